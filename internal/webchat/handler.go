// Package webchat serves the browser chat widget over a websocket. Each
// connection owns one conversation: its context and transcript live only as
// long as the socket.
package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/clinic-chat-assistant/internal/assistant"
	httpmiddleware "github.com/wolfman30/clinic-chat-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-chat-assistant/internal/session"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

const (
	maxTranscriptTurns = 40
	maxMessageRunes    = 2000
	turnTimeout        = 30 * time.Second
)

// Responder answers one chat turn.
type Responder interface {
	Respond(ctx context.Context, req assistant.Request) assistant.Response
	Greeting(clinician bool, identity string) string
}

// Handler upgrades chat connections.
type Handler struct {
	assistant Responder
	logger    *logging.Logger
	allowAny  bool
	origins   map[string]struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string `json:"type"` // "session", "message", "typing", "pong", "error"
	Text      string `json:"text,omitempty"`
	Source    string `json:"source,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler. allowedOrigins follows the CORS
// allowlist; connections without an Origin header (non-browser clients)
// are always accepted.
func NewHandler(r Responder, allowedOrigins []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{assistant: r, logger: logger, origins: map[string]struct{}{}}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			h.allowAny = true
		default:
			h.origins[o] = struct{}{}
		}
	}
	return h
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

func (h *Handler) handshake(_ *websocket.Config, r *http.Request) error {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" || h.allowAny {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("webchat: bad origin: %w", err)
	}
	if _, ok := h.origins[u.Scheme+"://"+u.Host]; !ok {
		return fmt.Errorf("webchat: origin %q not allowed", origin)
	}
	return nil
}

// HandleWebSocket upgrades to WebSocket and runs the conversation.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.assistant == nil {
		http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
		return
	}
	srv := websocket.Server{
		Handshake: h.handshake,
		Handler: func(conn *websocket.Conn) {
			h.serveWS(conn, r)
		},
	}
	srv.ServeHTTP(w, r)
}

// conversation is the per-connection state. Only the connection's own
// goroutine touches it.
type conversation struct {
	id         string
	caller     httpmiddleware.Caller
	context    *session.Context
	transcript session.Transcript
}

func (c *conversation) record(role session.Role, text string) {
	c.transcript = append(c.transcript, session.Turn{Role: role, Text: text})
	if len(c.transcript) > maxTranscriptTurns {
		c.transcript = append(session.Transcript(nil), c.transcript.Last(maxTranscriptTurns)...)
	}
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	conv := &conversation{
		id:      generateSessionID(),
		caller:  httpmiddleware.CallerFromContext(r.Context()),
		context: &session.Context{},
	}

	_ = h.send(conn, OutboundMessage{Type: "session", SessionID: conv.id})
	greeting := h.assistant.Greeting(conv.caller.Clinician, conv.caller.Identity)
	conv.record(session.RoleAssistant, greeting)
	_ = h.send(conn, OutboundMessage{Type: "message", Text: greeting})

	h.logger.Info("webchat: connection opened", "session_id", conv.id, "clinician", conv.caller.Clinician)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", conv.id, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = h.send(conn, OutboundMessage{Type: "pong"})
			continue
		case "message":
		default:
			continue
		}

		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		if len([]rune(text)) > maxMessageRunes {
			_ = h.send(conn, OutboundMessage{Type: "error", Text: "El mensaje es demasiado largo."})
			continue
		}
		if err := h.processMessage(r.Context(), conn, conv, text); err != nil {
			h.logger.Debug("webchat: send failed", "session_id", conv.id, "error", err)
			return
		}
	}
}

func (h *Handler) processMessage(ctx context.Context, conn *websocket.Conn, conv *conversation, text string) error {
	if err := h.send(conn, OutboundMessage{Type: "typing"}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()
	resp := h.assistant.Respond(ctx, assistant.Request{
		Text:              text,
		PriorTurns:        conv.transcript,
		Context:           conv.context,
		CallerIsClinician: conv.caller.Clinician,
		CallerIdentity:    conv.caller.Identity,
	})
	if resp.Context != nil {
		conv.context = resp.Context
	}
	conv.record(session.RoleUser, text)
	conv.record(session.RoleAssistant, resp.Text)

	return h.send(conn, OutboundMessage{
		Type:      "message",
		Text:      resp.Text,
		Source:    string(resp.Source),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) send(conn *websocket.Conn, msg OutboundMessage) error {
	return websocket.JSON.Send(conn, msg)
}
