package game

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/impostor/internal/domain"
)

var ErrRoomNotFound = errors.New("room not found")

// entry pairs a room with the mutex that serializes every operation
// touching it. Quorum-triggered transitions must fire exactly once, so
// all reads and mutations of one room go through this lock.
type entry struct {
	mu   sync.Mutex
	room *domain.Room
}

// Registry owns the room code space. Rooms never share state, only the
// code map itself needs cross-room coordination.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*entry)}
}

// CreateRoom registers a new room and adds the caller as its first
// player. Returns a copy of the creator; the live roster is only
// reachable under the room lock.
func (r *Registry) CreateRoom(username string, maxRounds int) (string, domain.Player, error) {
	creator, err := domain.NewPlayer(username)
	if err != nil {
		return "", domain.Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	code := r.newCodeLocked()
	room := domain.NewRoom(code, maxRounds)
	room.AddPlayer(creator)
	r.rooms[code] = &entry{room: room}
	log.Info().Str("module", "game.registry").Str("room", code).Str("creator", creator.Username).Msg("room created")
	return code, *creator, nil
}

// newCodeLocked derives a short uppercase code and retries on the off
// chance of a collision. Caller holds r.mu.
func (r *Registry) newCodeLocked() string {
	for {
		code := strings.ToUpper(uuid.NewString()[:6])
		if _, taken := r.rooms[code]; !taken {
			return code
		}
	}
}

// JoinRoom adds a player, or rebinds the identity of an existing player
// with the same username (case-insensitive) so a reconnecting client
// resumes its seat instead of duplicating it.
func (r *Registry) JoinRoom(code, username string, id domain.PlayerID) (domain.Player, error) {
	r.mu.RLock()
	e, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return domain.Player{}, ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing := e.room.PlayerByUsername(username); existing != nil {
		existing.ID = id
		log.Info().Str("module", "game.registry").Str("room", code).Str("username", existing.Username).Msg("player rebound")
		return *existing, nil
	}
	if len(username) == 0 {
		return domain.Player{}, domain.ErrUsernameEmpty
	}
	if len(username) > domain.MaxUsernameLen {
		return domain.Player{}, domain.ErrUsernameTooLong
	}
	p := &domain.Player{ID: id, Username: username}
	e.room.AddPlayer(p)
	log.Info().Str("module", "game.registry").Str("room", code).Str("username", username).Msg("player joined")
	return *p, nil
}

// WithRoom runs fn under the room's lock. A missing code is a valid
// outcome, reported as false; callers treat it as a no-op.
func (r *Registry) WithRoom(code string, fn func(*domain.Room)) bool {
	r.mu.RLock()
	e, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.room)
	return true
}

// HasPlayer reports whether the given identity is seated in the room.
func (r *Registry) HasPlayer(code string, id domain.PlayerID) bool {
	found := false
	r.WithRoom(code, func(room *domain.Room) {
		found = room.FindPlayer(id) != nil
	})
	return found
}
