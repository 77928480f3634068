package core

import (
	"context"
	"strings"
)

// Node is the metadata record for a named virtual space. It is fetched
// from the directory per join and never cached by the core.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Greeting string `json:"greeting,omitempty"`
}

// Visitor is an authenticated identity attached to a connection. A
// connection without a visitor is anonymous.
type Visitor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory resolves a node name to its metadata. Implementations fail
// with ErrNodeNotFound when the name is unknown.
type Directory interface {
	Resolve(ctx context.Context, name string) (*Node, error)
}

// Verifier validates a signed credential and returns the visitor identity
// it encodes.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Visitor, error)
}

// NormalizeNodeName strips the leading path separator and at most one
// trailing separator from a raw node token taken off the request target.
func NormalizeNodeName(raw string) string {
	name := strings.TrimPrefix(raw, "/")
	name = strings.TrimSuffix(name, "/")
	return name
}
