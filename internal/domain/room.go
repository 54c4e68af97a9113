package domain

import "strings"

const DefaultMaxRounds = 3

// Room is the authoritative state of one game session. Player order is
// join order and doubles as the speaking rotation order.
type Room struct {
	Code    string    `json:"code"`
	Players []*Player `json:"players"`
	Phase   GamePhase `json:"phase"`

	ImpostorID   PlayerID `json:"-"`
	ImpostorName string   `json:"-"`

	CategorySuggestions map[PlayerID]string `json:"-"`
	WordSuggestions     map[PlayerID]string `json:"-"`
	SelectedCategory    string              `json:"-"`
	SelectedWord        string              `json:"-"`

	// Votes maps voter to target; the last vote from a voter wins.
	Votes         map[PlayerID]PlayerID `json:"-"`
	TieBreaker    bool                  `json:"-"`
	TiedPlayerIDs map[PlayerID]struct{} `json:"-"`

	CurrentRound int `json:"currentRound"`
	MaxRounds    int `json:"maxRounds"`

	FirstSpeakerID PlayerID `json:"firstSpeakerId,omitempty"`
	// PreviousGameLastFirstSpeakerID survives Reset so the rotation
	// carries into the next game played in this room.
	PreviousGameLastFirstSpeakerID PlayerID `json:"-"`
}

func NewRoom(code string, maxRounds int) *Room {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Room{
		Code:                code,
		Phase:               PhaseLobby,
		MaxRounds:           maxRounds,
		CategorySuggestions: make(map[PlayerID]string),
		WordSuggestions:     make(map[PlayerID]string),
		Votes:               make(map[PlayerID]PlayerID),
		TiedPlayerIDs:       make(map[PlayerID]struct{}),
	}
}

func (r *Room) AddPlayer(p *Player) {
	r.Players = append(r.Players, p)
}

func (r *Room) FindPlayer(id PlayerID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByUsername matches case-insensitively; used for rejoin-by-name.
func (r *Room) PlayerByUsername(username string) *Player {
	for _, p := range r.Players {
		if strings.EqualFold(p.Username, username) {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the non-spectator players in join order.
func (r *Room) ActivePlayers() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Role != RoleSpectator {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) InnocentCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Role == RolePlayer {
			n++
		}
	}
	return n
}

// SuggestionValues lists suggestions in submitter join order so a random
// index maps to a stable candidate set.
func SuggestionValues(r *Room, pool map[PlayerID]string) []string {
	out := make([]string, 0, len(pool))
	for _, p := range r.Players {
		if v, ok := pool[p.ID]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (r *Room) EnterTieBreak(tied []PlayerID) {
	r.TieBreaker = true
	r.TiedPlayerIDs = make(map[PlayerID]struct{}, len(tied))
	for _, id := range tied {
		r.TiedPlayerIDs[id] = struct{}{}
	}
	clear(r.Votes)
}

func (r *Room) ClearTieBreak() {
	r.TieBreaker = false
	clear(r.TiedPlayerIDs)
}

// TiedIDs returns the tied candidates in join order.
func (r *Room) TiedIDs() []PlayerID {
	out := make([]PlayerID, 0, len(r.TiedPlayerIDs))
	for _, p := range r.Players {
		if _, ok := r.TiedPlayerIDs[p.ID]; ok {
			out = append(out, p.ID)
		}
	}
	return out
}

// Reset returns the room to the lobby. The roster and the previous
// game's last first speaker are the only things that survive.
func (r *Room) Reset() {
	r.Phase = PhaseLobby
	r.ImpostorID = ""
	r.ImpostorName = ""
	clear(r.CategorySuggestions)
	clear(r.WordSuggestions)
	r.SelectedCategory = ""
	r.SelectedWord = ""
	clear(r.Votes)
	r.ClearTieBreak()
	r.CurrentRound = 0
	r.FirstSpeakerID = ""
	for _, p := range r.Players {
		p.Role = RoleNone
	}
}
