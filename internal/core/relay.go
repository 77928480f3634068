package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Queue is the shared external message queue the relay drains. Pop blocks
// until an envelope payload is available or the context is done.
type Queue interface {
	Pop(ctx context.Context) ([]byte, error)
}

// Relay is the perpetual consumer that fans envelopes from the shared
// queue out to whichever nodes are hosted on this instance. It is the only
// path by which chat content reaches node members, including the sender.
type Relay struct {
	queue    Queue
	registry *Registry
	log      *zerolog.Logger
}

// NewRelay builds the relay consumer.
func NewRelay(queue Queue, registry *Registry, logger *zerolog.Logger) *Relay {
	return &Relay{queue: queue, registry: registry, log: logger}
}

// Run drains the queue until the context is cancelled or the queue becomes
// unavailable. A malformed envelope is logged and skipped; a queue error
// is fatal and returned to the caller.
func (r *Relay) Run(ctx context.Context) error {
	for {
		payload, err := r.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("pop envelope: %w", err)
		}

		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			r.log.Warn().Err(err).Msg("skipping malformed envelope")
			continue
		}
		if env.Node == "" {
			r.log.Warn().Msg("skipping envelope without node")
			continue
		}

		r.log.Debug().Str("node", env.Node).Str("from", env.Message.Name).Msg("relaying message")
		r.registry.Broadcast(env.Node, &Event{Kind: EventMessage, Message: env.Message})
	}
}
