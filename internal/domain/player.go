// Package domain contains the game entities. No locking or transport
// logic here; serialization is the registry's job.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxUsernameLen = 36

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
)

type PlayerID string

// Role is assigned at game start. A player has no role in the lobby.
type Role string

const (
	RoleNone      Role = ""
	RolePlayer    Role = "PLAYER"
	RoleImpostor  Role = "IMPOSTOR"
	RoleSpectator Role = "SPECTATOR"
)

type Player struct {
	ID       PlayerID `json:"id"`
	Username string   `json:"username"`
	Role     Role     `json:"role,omitempty"`
}

// NewPlayer validates the username and assigns a fresh identity.
func NewPlayer(username string) (*Player, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &Player{ID: PlayerID(uuid.NewString()), Username: username}, nil
}
