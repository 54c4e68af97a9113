// Package core holds the capability interfaces between the game engine
// and its collaborators, plus the outbound payload types.
package core

import "github.com/dkeye/impostor/internal/domain"

// PlayerDTO is the roster entry sent in room broadcasts.
type PlayerDTO struct {
	ID       domain.PlayerID `json:"id"`
	Username string          `json:"username"`
	Role     domain.Role     `json:"role,omitempty"`
}

// RoomStatus is the room-wide broadcast payload. ImpostorName is only
// populated once the phase is FINISHED.
type RoomStatus struct {
	Code           string            `json:"roomCode"`
	Players        []PlayerDTO       `json:"players"`
	Phase          domain.GamePhase  `json:"phase"`
	Message        string            `json:"message"`
	CurrentRound   int               `json:"currentRound"`
	MaxRounds      int               `json:"maxRounds"`
	ImpostorName   string            `json:"impostorName,omitempty"`
	FirstSpeakerID domain.PlayerID   `json:"firstSpeakerId,omitempty"`
	TieBreaker     bool              `json:"tieBreaker"`
	TiedPlayerIDs  []domain.PlayerID `json:"tiedPlayerIds,omitempty"`
}

// PrivateState is the per-player delivery payload. On the word reveal
// the impostor's Word is the literal "???".
type PrivateState struct {
	Role     string `json:"role"`
	Category string `json:"category,omitempty"`
	Word     string `json:"secretWord,omitempty"`
	Message  string `json:"message"`
}

// Notifier is the outbound capability of the orchestrator. Delivery is
// fire-and-forget; implementations must preserve per-recipient order.
type Notifier interface {
	BroadcastRoom(code string, st RoomStatus)
	SendToPlayer(id domain.PlayerID, st PrivateState)
}

// Rand is the uniform randomness source used for impostor selection,
// suggestion picks, tie resolution and speaker fallback. Injectable so
// tests can script the sequence.
type Rand interface {
	IntN(n int) int
}
