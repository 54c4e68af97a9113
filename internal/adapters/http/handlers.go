package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/impostor/internal/core"
	"github.com/dkeye/impostor/internal/domain"
	"github.com/dkeye/impostor/internal/game"
)

// Handlers are the request/response entry points. Unlike the event
// paths these do surface errors to the caller.
type Handlers struct {
	Orch *game.Orchestrator
}

type createRoomRequest struct {
	Username  string `json:"username" binding:"required"`
	MaxRounds int    `json:"maxRounds"`
}

type joinRoomRequest struct {
	Username string `json:"username" binding:"required"`
}

type joinResponse struct {
	Player domain.Player   `json:"player"`
	Room   core.RoomStatus `json:"room"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid username"})
		return
	}

	code, creator, err := h.Orch.Rooms.CreateRoom(req.Username, req.MaxRounds)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, _ := h.Orch.RoomStatus(code, "Room created.")
	c.JSON(http.StatusOK, joinResponse{Player: creator, Room: st})
}

func (h *Handlers) JoinRoom(c *gin.Context) {
	code := c.Param("roomCode")
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid username"})
		return
	}

	id := domain.PlayerID(uuid.NewString())
	player, err := h.Orch.Rooms.JoinRoom(code, req.Username, id)
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Orch.AnnounceJoin(code, player.Username)
	st, _ := h.Orch.RoomStatus(code, player.Username+" joined.")
	log.Info().Str("module", "adapters.http").Str("room", code).Str("username", player.Username).Msg("join handled")
	c.JSON(http.StatusOK, joinResponse{Player: player, Room: st})
}
