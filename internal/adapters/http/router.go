package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/impostor/internal/adapters/signal"
	"github.com/dkeye/impostor/internal/config"
	"github.com/dkeye/impostor/internal/game"
)

// ClientTokenMiddleware tags every browser with an opaque token so the
// frontend can correlate its tabs; player identity itself is issued by
// the create/join endpoints.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, orch *game.Orchestrator, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &Handlers{Orch: orch}
	api := r.Group("/api/game")
	api.POST("/create", h.CreateRoom)
	api.POST("/join/:roomCode", h.JoinRoom)

	r.GET("/api/ws", ctl.HandleWS)

	return r
}
