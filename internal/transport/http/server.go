package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nodeworld/nodeworld-live/internal/config"
	"github.com/nodeworld/nodeworld-live/internal/core"
)

// Publisher pushes envelope payloads onto the shared message queue on
// behalf of HTTP callers. The relay consumer picks them up on the other end.
type Publisher interface {
	Push(ctx context.Context, payload []byte) error
}

// NewServer builds the HTTP server: health check, the node websocket
// endpoint, and the message publish API.
func NewServer(gate *core.Gate, registry *core.Registry, directory core.Directory, verifier core.Verifier, publisher Publisher, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigin))

	router.GET("/health", healthHandler)

	ws := NewWSHandler(gate, registry, directory, verifier, cfg.LookupTimeout, logger)
	router.GET("/live/*node", ws.Handle)

	messages := NewMessageHandlers(publisher, verifier, cfg.PublishRateLimit, logger)
	router.POST("/api/messages", messages.Publish)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
