package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Session drives the connection protocol for one admitted connection:
// authenticate, greet, register presence, broadcast arrival, then react to
// login, logout and disconnect events until the transport goes away.
type Session struct {
	conn      *Conn
	registry  *Registry
	directory Directory
	verifier  Verifier
	timeout   time.Duration
	log       *zerolog.Logger
}

// NewSession constructs the protocol handler for a connection that already
// passed the admission gate.
func NewSession(conn *Conn, registry *Registry, directory Directory, verifier Verifier, timeout time.Duration, logger *zerolog.Logger) *Session {
	return &Session{
		conn:      conn,
		registry:  registry,
		directory: directory,
		verifier:  verifier,
		timeout:   timeout,
		log:       logger,
	}
}

// Conn exposes the connection this session drives.
func (s *Session) Conn() *Conn {
	return s.conn
}

// Join runs the connection protocol. Authentication failure is non-fatal:
// the connection proceeds anonymous. A node re-resolution failure is fatal
// for the join; the connection stays open but unregistered.
func (s *Session) Join(ctx context.Context) {
	s.log.Info().Str("conn_id", s.conn.ID).Str("node", s.conn.Node).Msg("connection joined node")

	if visitor, err := s.authenticate(ctx); err != nil {
		s.log.Debug().Str("conn_id", s.conn.ID).Msg("authentication failed, connection has anonymous access")
	} else {
		s.conn.SetVisitor(visitor)
		s.log.Info().Str("conn_id", s.conn.ID).Str("visitor", visitor.Name).Msg("connection authenticated")
	}

	node, err := s.resolve(ctx)
	if err != nil {
		s.conn.send(&Event{Kind: EventMessage, Message: SystemMessage(fmt.Sprintf("Failed to join node. Reason: %s", err))})
		s.log.Info().Str("name", s.conn.DisplayName()).Str("node", s.conn.Node).Err(err).Msg("connection failed to join node")
		return
	}

	s.conn.send(&Event{Kind: EventMessage, Message: SystemMessage(fmt.Sprintf("Joined %s.", node.Name))})
	if node.Greeting != "" {
		s.conn.send(&Event{Kind: EventMessage, Message: SystemMessage(node.Greeting)})
	}

	s.registry.Register(s.conn.Node, s.conn)
	s.broadcastVisitors()
	s.conn.send(&Event{Kind: EventJoined})

	if visitor := s.conn.Visitor(); visitor != nil {
		s.registry.BroadcastOthers(s.conn.Node, s.conn.ID, &Event{
			Kind:    EventMessage,
			Message: SystemMessage(fmt.Sprintf("%s is here.", visitor.Name)),
		})
	}
}

// Login re-attempts authentication with the connection's attached
// credential. Success updates the visitor and re-broadcasts presence;
// failure is a silent no-op.
func (s *Session) Login(ctx context.Context) {
	s.log.Debug().Str("name", s.conn.DisplayName()).Msg("login requested, authenticating connection")

	visitor, err := s.authenticate(ctx)
	if err != nil {
		s.log.Debug().Str("conn_id", s.conn.ID).Msg("authentication failed, presence not updated")
		return
	}
	s.conn.SetVisitor(visitor)
	s.broadcastVisitors()
}

// Logout clears the visitor unconditionally and re-broadcasts presence.
func (s *Session) Logout() {
	s.log.Debug().Str("name", s.conn.DisplayName()).Msg("logout requested, connection is now anonymous")
	s.conn.SetVisitor(nil)
	s.broadcastVisitors()
}

// Disconnect deregisters the connection, announces the departure of an
// authenticated visitor to the remaining occupants, and re-broadcasts
// presence. A connection that never registered leaves no trace.
func (s *Session) Disconnect(reason string) {
	s.log.Debug().Str("name", s.conn.DisplayName()).Str("reason", reason).Msg("connection left node")
	s.conn.Close()

	if !s.registry.Deregister(s.conn.Node, s.conn.ID) {
		return
	}
	if visitor := s.conn.Visitor(); visitor != nil {
		s.registry.Broadcast(s.conn.Node, &Event{
			Kind:    EventMessage,
			Message: SystemMessage(fmt.Sprintf("%s left.", visitor.Name)),
		})
	}
	s.broadcastVisitors()
}

// Error records a transport-level error. It changes no state.
func (s *Session) Error(err error) {
	s.log.Error().Str("conn_id", s.conn.ID).Err(err).Msg("connection error")
}

func (s *Session) authenticate(ctx context.Context) (*Visitor, error) {
	s.log.Debug().Str("conn_id", s.conn.ID).Msg("authenticating connection")
	if s.conn.Token == "" {
		return nil, ErrInvalidCredential
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.verifier.Verify(ctx, s.conn.Token)
}

func (s *Session) resolve(ctx context.Context) (*Node, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.directory.Resolve(ctx, s.conn.Node)
}

func (s *Session) broadcastVisitors() {
	visitors := s.registry.Snapshot(s.conn.Node)
	s.log.Debug().Str("node", s.conn.Node).Int("count", len(visitors)).Msg("broadcasting presence snapshot")
	s.registry.Broadcast(s.conn.Node, &Event{Kind: EventVisitors, Visitors: visitors})
}
