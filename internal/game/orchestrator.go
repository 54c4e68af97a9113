// Package game implements the per-room state machine: phase
// transitions, suggestion and vote aggregation, tie-break escalation,
// win evaluation and first-speaker rotation.
package game

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/impostor/internal/core"
	"github.com/dkeye/impostor/internal/domain"
)

const minPlayers = 3

// impostorWordMask is what the impostor sees instead of the word.
const impostorWordMask = "???"

// Orchestrator drives room state through the Registry and emits events
// through the Notifier. Entry points are silent no-ops on stale or
// invalid input; only the join path reports errors, and it lives on the
// registry.
type Orchestrator struct {
	Rooms  *Registry
	Notify core.Notifier
	Rand   core.Rand
}

// recoverOp keeps a fault in one handler from taking down the room or
// the process; the room stays usable for the next operation.
func recoverOp(op, code string) {
	if rec := recover(); rec != nil {
		log.Error().Str("module", "game.orchestrator").Str("op", op).Str("room", code).Interface("panic", rec).Msg("recovered from fault")
	}
}

// StartGame assigns roles and opens category input. No-op below three
// players or for an unknown room.
func (o *Orchestrator) StartGame(code string) {
	defer recoverOp("start", code)
	o.Rooms.WithRoom(code, func(room *domain.Room) {
		if len(room.Players) < minPlayers {
			return
		}
		room.Reset()
		room.Phase = domain.PhaseAssignRoles

		impostor := room.Players[o.Rand.IntN(len(room.Players))]
		impostor.Role = domain.RoleImpostor
		room.ImpostorID = impostor.ID
		room.ImpostorName = impostor.Username

		for _, p := range room.Players {
			if p.ID != impostor.ID {
				p.Role = domain.RolePlayer
			}
			o.Notify.SendToPlayer(p.ID, core.PrivateState{
				Role:    string(p.Role),
				Message: "Role assigned: " + string(p.Role),
			})
		}

		room.Phase = domain.PhaseCategoryInput
		log.Info().Str("module", "game.orchestrator").Str("room", code).Int("players", len(room.Players)).Msg("game started")
		o.broadcast(room, "Waiting for category suggestions...")
	})
}

// SubmitCategory records a suggestion from anyone seated in the room.
// Once every player has submitted, one suggestion is picked at random
// and the room moves to word input.
func (o *Orchestrator) SubmitCategory(code string, playerID domain.PlayerID, text string) {
	defer recoverOp("category", code)
	o.Rooms.WithRoom(code, func(room *domain.Room) {
		if room.Phase != domain.PhaseCategoryInput {
			return
		}
		if room.FindPlayer(playerID) == nil {
			return
		}
		room.CategorySuggestions[playerID] = text
		if len(room.CategorySuggestions) < len(room.Players) {
			return
		}

		values := domain.SuggestionValues(room, room.CategorySuggestions)
		room.SelectedCategory = values[o.Rand.IntN(len(values))]
		room.Phase = domain.PhaseWordInput

		o.broadcast(room, "Category selected: "+room.SelectedCategory+". Waiting for words...")
		for _, p := range room.Players {
			o.Notify.SendToPlayer(p.ID, core.PrivateState{
				Role:     string(p.Role),
				Category: room.SelectedCategory,
				Message:  "Category is: " + room.SelectedCategory,
			})
		}
	})
}

// SubmitWord records a word from an innocent player. The impostor has
// no word voice. Once every innocent has submitted, one word is picked,
// round 1 begins and the word is revealed privately, masked for the
// impostor.
func (o *Orchestrator) SubmitWord(code string, playerID domain.PlayerID, text string) {
	defer recoverOp("word", code)
	o.Rooms.WithRoom(code, func(room *domain.Room) {
		if room.Phase != domain.PhaseWordInput {
			return
		}
		p := room.FindPlayer(playerID)
		if p == nil || p.Role == domain.RoleImpostor {
			return
		}
		room.WordSuggestions[playerID] = text
		if o.innocentSubmitters(room) < room.InnocentCount() {
			return
		}

		values := domain.SuggestionValues(room, room.WordSuggestions)
		room.SelectedWord = values[o.Rand.IntN(len(values))]
		room.CurrentRound = 1
		room.Phase = domain.PhaseVoting
		o.determineFirstSpeaker(room)

		o.broadcast(room, "Word selected! Round 1 begins.")
		for _, p := range room.Players {
			word := room.SelectedWord
			if p.Role == domain.RoleImpostor {
				word = impostorWordMask
			}
			o.Notify.SendToPlayer(p.ID, core.PrivateState{
				Role:     string(p.Role),
				Category: room.SelectedCategory,
				Word:     word,
				Message:  "Game started!",
			})
		}
	})
}

func (o *Orchestrator) innocentSubmitters(room *domain.Room) int {
	n := 0
	for id := range room.WordSuggestions {
		if p := room.FindPlayer(id); p != nil && p.Role == domain.RolePlayer {
			n++
		}
	}
	return n
}

// Vote records a ballot; the last vote from a voter wins. During a
// tie-break only tied candidates are valid targets. When every active
// player has voted the round resolves.
func (o *Orchestrator) Vote(code string, voterID, targetID domain.PlayerID) {
	defer recoverOp("vote", code)
	o.Rooms.WithRoom(code, func(room *domain.Room) {
		if room.Phase != domain.PhaseVoting {
			return
		}
		voter := room.FindPlayer(voterID)
		if voter == nil || voter.Role == domain.RoleSpectator {
			return
		}
		if room.TieBreaker {
			if _, tied := room.TiedPlayerIDs[targetID]; !tied {
				return
			}
		}
		room.Votes[voterID] = targetID
		if len(room.Votes) >= len(room.ActivePlayers()) {
			o.resolveRound(room)
		}
	})
}

// ResetGame returns the room to the lobby. The speaker carry-over
// survives into the next game.
func (o *Orchestrator) ResetGame(code string) {
	defer recoverOp("reset", code)
	o.Rooms.WithRoom(code, func(room *domain.Room) {
		room.Reset()
		o.broadcast(room, "Game reset to lobby.")
	})
}

// AnnounceJoin broadcasts the updated roster after an HTTP join.
func (o *Orchestrator) AnnounceJoin(code, username string) {
	defer recoverOp("announce_join", code)
	o.Rooms.WithRoom(code, func(room *domain.Room) {
		o.broadcast(room, username+" joined.")
	})
}

// KnowsPlayer reports whether the identity is seated in the room; the
// websocket adapter gates connections on it.
func (o *Orchestrator) KnowsPlayer(code string, id domain.PlayerID) bool {
	return o.Rooms.HasPlayer(code, id)
}

// RoomStatus snapshots a room for request/response callers.
func (o *Orchestrator) RoomStatus(code, message string) (core.RoomStatus, bool) {
	var st core.RoomStatus
	ok := o.Rooms.WithRoom(code, func(room *domain.Room) {
		st = statusOf(room, message)
	})
	return st, ok
}

func (o *Orchestrator) broadcast(room *domain.Room, message string) {
	o.Notify.BroadcastRoom(room.Code, statusOf(room, message))
}

func statusOf(room *domain.Room, message string) core.RoomStatus {
	players := make([]core.PlayerDTO, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, core.PlayerDTO{ID: p.ID, Username: p.Username, Role: p.Role})
	}
	st := core.RoomStatus{
		Code:           room.Code,
		Players:        players,
		Phase:          room.Phase,
		Message:        message,
		CurrentRound:   room.CurrentRound,
		MaxRounds:      room.MaxRounds,
		FirstSpeakerID: room.FirstSpeakerID,
		TieBreaker:     room.TieBreaker,
		TiedPlayerIDs:  room.TiedIDs(),
	}
	if room.Phase == domain.PhaseFinished {
		st.ImpostorName = room.ImpostorName
	}
	return st
}
