package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/assistant"
	httpmiddleware "github.com/wolfman30/clinic-chat-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-chat-assistant/internal/session"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

const (
	maxTurnBodyBytes = 64 << 10
	maxTurnTextRunes = 2000
)

// Responder answers one chat turn.
type Responder interface {
	Respond(ctx context.Context, req assistant.Request) assistant.Response
	Greeting(clinician bool, identity string) string
}

// ChatHandler serves the stateless turn API: the caller sends back the
// transcript and context it received on the previous turn.
type ChatHandler struct {
	assistant Responder
	logger    *logging.Logger
}

func NewChatHandler(r Responder, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{assistant: r, logger: logger}
}

// TurnRequest is the body of POST /v1/chat/turns.
type TurnRequest struct {
	Text       string             `json:"text"`
	PriorTurns session.Transcript `json:"prior_turns,omitempty"`
	Context    *session.Context   `json:"context,omitempty"`
}

type TurnResponse struct {
	Text    string           `json:"text"`
	Source  string           `json:"source"`
	Context *session.Context `json:"context"`
}

type GreetingResponse struct {
	Text string `json:"text"`
}

// Turn handles POST /v1/chat/turns.
func (h *ChatHandler) Turn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.assistant == nil {
		http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxTurnBodyBytes)
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if len([]rune(text)) > maxTurnTextRunes {
		http.Error(w, "text is too long", http.StatusRequestEntityTooLarge)
		return
	}
	for _, t := range req.PriorTurns {
		if t.Role != session.RoleUser && t.Role != session.RoleAssistant {
			http.Error(w, "prior_turns role must be user or assistant", http.StatusBadRequest)
			return
		}
	}

	caller := httpmiddleware.CallerFromContext(r.Context())
	resp := h.assistant.Respond(r.Context(), assistant.Request{
		Text:              text,
		PriorTurns:        req.PriorTurns,
		Context:           req.Context,
		CallerIsClinician: caller.Clinician,
		CallerIdentity:    caller.Identity,
	})
	writeJSON(w, http.StatusOK, TurnResponse{
		Text:    resp.Text,
		Source:  string(resp.Source),
		Context: resp.Context,
	})
}

// Greeting handles GET /v1/chat/greeting, the first assistant message of a
// new conversation.
func (h *ChatHandler) Greeting(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.assistant == nil {
		http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
		return
	}
	caller := httpmiddleware.CallerFromContext(r.Context())
	writeJSON(w, http.StatusOK, GreetingResponse{Text: h.assistant.Greeting(caller.Clinician, caller.Identity)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
