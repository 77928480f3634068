package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nodeworld/nodeworld-live/internal/core"
	"github.com/nodeworld/nodeworld-live/internal/proto"
	"github.com/nodeworld/nodeworld-live/internal/utils"
)

// sessionTokenCookie is the cookie the upstream API sets after login.
const sessionTokenCookie = "visitor_session"

// WSHandler upgrades HTTP connections into node sessions. The admission
// gate runs before the websocket handshake so unknown nodes are rejected
// with a plain HTTP status.
type WSHandler struct {
	gate      *core.Gate
	registry  *core.Registry
	directory core.Directory
	verifier  core.Verifier
	timeout   time.Duration
	log       *zerolog.Logger
}

// NewWSHandler builds the websocket handler for node connections.
func NewWSHandler(gate *core.Gate, registry *core.Registry, directory core.Directory, verifier core.Verifier, timeout time.Duration, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		gate:      gate,
		registry:  registry,
		directory: directory,
		verifier:  verifier,
		timeout:   timeout,
		log:       logger,
	}
}

// Handle serves GET /live/*node.
func (h *WSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	node, err := h.gate.Admit(ctx, c.Param("node"))
	if err != nil {
		status := stdhttp.StatusBadGateway
		if errors.Is(err, core.ErrNodeNotFound) {
			status = stdhttp.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	wsconn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer wsconn.Close(websocket.StatusInternalError, "internal error")

	conn := core.NewConn(utils.NewID(), node, extractToken(c.Request))
	session := core.NewSession(conn, h.registry, h.directory, h.verifier, h.timeout, h.log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- h.writeLoop(ctx, wsconn, conn)
	}()

	session.Join(ctx)

	err = h.readLoop(ctx, wsconn, session)
	session.Disconnect(disconnectReason(err))

	cancel()
	<-writeErr

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			session.Error(err)
		}
	}

	wsconn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, wsconn *websocket.Conn, session *core.Session) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, wsconn, &inbound); err != nil {
			return err
		}

		switch inbound.Type {
		case proto.InboundTypeLogin:
			session.Login(ctx)
		case proto.InboundTypeLogout:
			session.Logout()
		default:
			h.log.Debug().Str("type", inbound.Type).Msg("ignoring unknown inbound event")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, wsconn *websocket.Conn, conn *core.Conn) error {
	for {
		select {
		case event, ok := <-conn.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, wsconn, outboundFromEvent(event)); err != nil {
				h.log.Warn().Err(err).Str("conn_id", conn.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// extractToken pulls the visitor credential off the request: the session
// cookie first, then a bearer Authorization header. Cookie parsing and
// validation stay out of the core.
func extractToken(r *stdhttp.Request) string {
	if cookie, err := r.Cookie(sessionTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const prefix = "Bearer "
	if header := r.Header.Get("Authorization"); len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func disconnectReason(err error) string {
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return "transport close"
	case websocket.CloseStatus(err) != 0:
		return fmt.Sprintf("close status %d", websocket.CloseStatus(err))
	default:
		return err.Error()
	}
}
