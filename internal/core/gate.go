package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Gate decides whether a requested node name denotes an existing node. It
// runs before the websocket handshake completes so unknown nodes are
// rejected without any socket-level setup.
type Gate struct {
	directory Directory
	timeout   time.Duration
	log       *zerolog.Logger
}

// NewGate builds an admission gate backed by the given directory.
func NewGate(directory Directory, timeout time.Duration, logger *zerolog.Logger) *Gate {
	return &Gate{directory: directory, timeout: timeout, log: logger}
}

// Admit normalizes the raw node token and resolves it against the
// directory. It returns the normalized name on success and ErrNodeNotFound
// (wrapped with the directory's reason) on failure. The resolved metadata
// is deliberately not returned: the connection protocol re-resolves it,
// keeping the two call-sites' failure semantics independent.
func (g *Gate) Admit(ctx context.Context, raw string) (string, error) {
	name := NormalizeNodeName(raw)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if _, err := g.directory.Resolve(ctx, name); err != nil {
		g.log.Warn().Str("node", name).Err(err).Msg("node admission denied")
		return "", err
	}
	g.log.Debug().Str("node", name).Msg("node admission granted")
	return name, nil
}
