// Package signal is the websocket adapter: it carries inbound game
// actions to the orchestrator and implements the outbound notification
// capability (room fan-out and per-player delivery).
package signal

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/impostor/internal/core"
	"github.com/dkeye/impostor/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// playerConn wraps one websocket. The buffered send channel plus the
// single write pump preserve per-recipient message order.
type playerConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *playerConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *playerConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Controller binds connected players to their rooms and doubles as the
// orchestrator's Notifier.
type Controller struct {
	Orch       GameOrchestrator
	Limiter    *ActionRateLimiter
	ReadLimit  int64
	PingPeriod time.Duration

	mu    sync.RWMutex
	conns map[domain.PlayerID]*playerConn
	rooms map[string]map[domain.PlayerID]struct{}
}

// GameOrchestrator is the inbound capability the controller needs; the
// concrete orchestrator satisfies it.
type GameOrchestrator interface {
	StartGame(code string)
	SubmitCategory(code string, playerID domain.PlayerID, text string)
	SubmitWord(code string, playerID domain.PlayerID, text string)
	Vote(code string, voterID, targetID domain.PlayerID)
	ResetGame(code string)
	KnowsPlayer(code string, id domain.PlayerID) bool
}

func NewController(limiter *ActionRateLimiter, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Limiter:    limiter,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		conns:      make(map[domain.PlayerID]*playerConn),
		rooms:      make(map[string]map[domain.PlayerID]struct{}),
	}
}

// BroadcastRoom implements core.Notifier.
func (ctl *Controller) BroadcastRoom(code string, st core.RoomStatus) {
	data, err := json.Marshal(outbound{Type: "room_status", Room: &st})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	for id := range ctl.rooms[code] {
		if c, ok := ctl.conns[id]; ok {
			if err := c.TrySend(data); err != nil {
				log.Warn().Str("module", "signal").Str("player", string(id)).Err(err).Msg("broadcast drop")
			}
		}
	}
}

// SendToPlayer implements core.Notifier.
func (ctl *Controller) SendToPlayer(id domain.PlayerID, st core.PrivateState) {
	data, err := json.Marshal(outbound{Type: "private_state", State: &st})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("private marshal")
		return
	}
	ctl.mu.RLock()
	c, ok := ctl.conns[id]
	ctl.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.TrySend(data); err != nil {
		log.Warn().Str("module", "signal").Str("player", string(id)).Err(err).Msg("private drop")
	}
}

type outbound struct {
	Type  string             `json:"type"`
	Room  *core.RoomStatus   `json:"room,omitempty"`
	State *core.PrivateState `json:"state,omitempty"`
}

// HandleWS upgrades the connection and binds it to the player identity
// issued by the create/join endpoints.
func (ctl *Controller) HandleWS(c *gin.Context) {
	code := c.Query("room")
	playerID := domain.PlayerID(c.Query("playerId"))
	if code == "" || playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room and playerId required"})
		return
	}
	if !ctl.Orch.KnowsPlayer(code, playerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown room or player"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("room", code).Str("player", string(playerID)).Msg("ws connected")

	conn := &playerConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
	ctl.register(code, playerID, conn)

	go ctl.writePump(conn)
	go ctl.readPump(code, playerID, conn)
}

func (ctl *Controller) register(code string, id domain.PlayerID, conn *playerConn) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	// A rebound identity replaces its stale connection.
	if old, ok := ctl.conns[id]; ok {
		old.Close()
	}
	ctl.conns[id] = conn
	subs, ok := ctl.rooms[code]
	if !ok {
		subs = make(map[domain.PlayerID]struct{})
		ctl.rooms[code] = subs
	}
	subs[id] = struct{}{}
}

func (ctl *Controller) unregister(code string, id domain.PlayerID, conn *playerConn) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.conns[id] == conn {
		delete(ctl.conns, id)
		if subs, ok := ctl.rooms[code]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(ctl.rooms, code)
			}
		}
	}
}
