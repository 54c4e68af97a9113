package signal

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/impostor/internal/domain"
)

const writeDeadline = 5 * time.Second

func (ctl *Controller) writePump(c *playerConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(code string, playerID domain.PlayerID, c *playerConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("player", string(playerID)).Msg("readPump closing")
		ctl.unregister(code, playerID, c)
		c.Close()
	}()

	if ctl.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.ReadLimit)
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Str("module", "signal").Str("player", string(playerID)).Msg("readPump read error")
			return
		}
		ctl.handleAction(code, playerID, c, data)
	}
}

type inbound struct {
	Type   string          `json:"type"`
	Value  string          `json:"value,omitempty"`
	Target domain.PlayerID `json:"target,omitempty"`
}

func (ctl *Controller) handleAction(code string, playerID domain.PlayerID, c *playerConn, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}
	if msg.Type != "ping" && ctl.Limiter != nil && !ctl.Limiter.Allow(playerID) {
		log.Warn().Str("module", "signal").Str("player", string(playerID)).Str("type", msg.Type).Msg("rate limited")
		return
	}

	switch msg.Type {
	case "start":
		ctl.Orch.StartGame(code)
	case "category":
		ctl.Orch.SubmitCategory(code, playerID, msg.Value)
	case "word":
		ctl.Orch.SubmitWord(code, playerID, msg.Value)
	case "vote":
		ctl.Orch.Vote(code, playerID, msg.Target)
	case "reset":
		ctl.Orch.ResetGame(code)
	case "ping":
		_ = c.TrySend([]byte(`{"type":"pong"}`))
	default:
		log.Warn().Str("module", "signal").Str("type", msg.Type).Msg("unknown action")
	}
}
