package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nodeworld/nodeworld-live/internal/core"
)

// MessageHandlers exposes the publish side of the shared queue: the web
// client posts chat lines here and the relay consumers deliver them to
// whichever instances host the node's members.
type MessageHandlers struct {
	publisher Publisher
	verifier  core.Verifier
	limiter   *rateLimiter
	log       *zerolog.Logger
}

// NewMessageHandlers creates the message publish handlers.
func NewMessageHandlers(publisher Publisher, verifier core.Verifier, rateLimit int, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		publisher: publisher,
		verifier:  verifier,
		limiter:   newRateLimiter(rateLimit),
		log:       logger,
	}
}

// PublishRequest represents the message publish request body.
type PublishRequest struct {
	Node    string `json:"node" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Publish handles POST /api/messages. Only authenticated visitors may
// publish; a "/me " prefix turns the line into an action.
func (h *MessageHandlers) Publish(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid publish request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token := extractToken(c.Request)
	visitor, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		h.log.Debug().Err(err).Msg("publish rejected, invalid credential")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credential"})
		return
	}

	node := core.NormalizeNodeName(req.Node)
	if node == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "node is required"})
		return
	}

	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many messages"})
		return
	}

	var msg core.Message
	if action, ok := strings.CutPrefix(req.Content, "/me "); ok {
		msg = core.ActionMessage(visitor.Name, action)
	} else {
		msg = core.ChatMessage(visitor.Name, req.Content)
	}

	payload, err := json.Marshal(core.Envelope{Node: node, Message: msg})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to encode message"})
		return
	}

	if err := h.publisher.Push(c.Request.Context(), payload); err != nil {
		h.log.Error().Err(err).Str("node", node).Msg("failed to publish message")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "queue unavailable"})
		return
	}

	h.log.Debug().Str("node", node).Str("from", visitor.Name).Msg("message published")
	c.Status(http.StatusAccepted)
}
