package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nodeworld/nodeworld-live/internal/auth"
	"github.com/nodeworld/nodeworld-live/internal/config"
	"github.com/nodeworld/nodeworld-live/internal/core"
	"github.com/nodeworld/nodeworld-live/internal/directory"
	"github.com/nodeworld/nodeworld-live/internal/queue"
	transporthttp "github.com/nodeworld/nodeworld-live/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	relay           *core.Relay
	queue           *queue.Redis
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	q := queue.NewRedis(cfg.RedisAddr, cfg.QueueKey, logger)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Ping(pingCtx); err != nil {
		_ = q.Close()
		return nil, fmt.Errorf("connect queue: %w", err)
	}
	logger.Info().Str("redis_addr", cfg.RedisAddr).Str("queue_key", cfg.QueueKey).Msg("queue connected")

	dir := directory.NewClient(cfg.DirectoryURL, cfg.LookupTimeout, logger)
	verifier := auth.NewVerifier(&auth.Config{
		Secret:   []byte(cfg.TokenSecret),
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
	})

	registry := core.NewRegistry()
	gate := core.NewGate(dir, cfg.LookupTimeout, logger)
	relay := core.NewRelay(q, registry, logger)

	server := transporthttp.NewServer(gate, registry, dir, verifier, q, *cfg, logger)

	return &App{
		server:          server,
		relay:           relay,
		queue:           q,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Run starts the relay consumer and the HTTP server and blocks until
// context cancellation or fatal error. A relay failure (queue unavailable)
// is fatal for the whole process.
func (a *App) Run(ctx context.Context) error {
	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()

	relayErr := make(chan error, 1)
	go func() {
		relayErr <- a.relay.Run(relayCtx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case err := <-relayErr:
		if err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("relay consumer failed")
		}
		a.shutdownServer()
		a.cleanup()
		return err
	case <-ctx.Done():
		stopRelay()
		err := a.shutdownServer()
		a.cleanup()
		if err != nil {
			return err
		}
		return <-serverErr
	}
}

func (a *App) shutdownServer() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down http server")
	return a.server.Shutdown(shutdownCtx)
}

// cleanup closes the queue connection.
func (a *App) cleanup() {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close queue")
		} else {
			a.log.Info().Msg("queue closed")
		}
	}
}
