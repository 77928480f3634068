package core

import (
	"fmt"
	"sync"
)

// Conn is one client's live session within a single node. The node name is
// fixed for the connection's lifetime; the visitor is mutable and changes
// with authentication events.
type Conn struct {
	ID     string
	Node   string
	Token  string
	Events chan *Event

	mu      sync.Mutex
	visitor *Visitor
	closed  bool
}

// NewConn constructs a connection bound to a node, carrying whatever
// credential the transport extracted from the request (may be empty).
func NewConn(id, node, token string) *Conn {
	return &Conn{
		ID:     id,
		Node:   node,
		Token:  token,
		Events: make(chan *Event, 16),
	}
}

// Visitor returns the current visitor identity, or nil for anonymous access.
func (c *Conn) Visitor() *Visitor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visitor
}

// SetVisitor replaces the visitor identity. Passing nil makes the
// connection anonymous.
func (c *Conn) SetVisitor(v *Visitor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visitor = v
}

// DisplayName returns the visitor name, or a guest label derived from the
// connection id for anonymous connections.
func (c *Conn) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visitor != nil {
		return c.visitor.Name
	}
	return fmt.Sprintf("guest %s", c.ID)
}

// Close marks the connection as disconnected. Events sent afterwards are
// dropped instead of being written to a dead transport.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether the connection has disconnected.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// send queues an event for the write loop. Slow consumers and closed
// connections drop the event rather than block the caller.
func (c *Conn) send(ev *Event) {
	if c.Closed() {
		return
	}
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
