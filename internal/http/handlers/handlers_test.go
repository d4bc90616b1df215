package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-chat-assistant/internal/assistant"
	httpmiddleware "github.com/wolfman30/clinic-chat-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/internal/session"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

type fakeResponder struct {
	last  assistant.Request
	calls int
}

func (f *fakeResponder) Respond(_ context.Context, req assistant.Request) assistant.Response {
	f.calls++
	f.last = req
	sess := req.Context.Clone()
	sess.LastQuery = req.Text
	return assistant.Response{Text: "Su total es Q150.00", Source: assistant.SourceComputed, Context: sess}
}

func (f *fakeResponder) Greeting(clinician bool, identity string) string {
	if clinician {
		return "Hola, Dr(a). " + identity
	}
	return "Hola"
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", &bytes.Buffer{})
}

func postTurn(t *testing.T, h http.Handler, body string, caller *httpmiddleware.Caller) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/turns", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req = req.WithContext(httpmiddleware.WithCaller(req.Context(), *caller))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatTurnPassesTranscriptAndContext(t *testing.T) {
	fake := &fakeResponder{}
	h := NewChatHandler(fake, quietLogger())

	body := `{
		"text": "  ¿cuánto es el total?  ",
		"prior_turns": [{"role":"user","text":"precios"},{"role":"assistant","text":"Consulta general: Q150.00"}],
		"context": {"last_appointment_code":"0042"}
	}`
	rec := postTurn(t, http.HandlerFunc(h.Turn), body, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "¿cuánto es el total?", fake.last.Text)
	require.Len(t, fake.last.PriorTurns, 2)
	assert.Equal(t, session.RoleAssistant, fake.last.PriorTurns[1].Role)
	require.NotNil(t, fake.last.Context)
	assert.Equal(t, "0042", fake.last.Context.LastAppointmentCode)
	assert.False(t, fake.last.CallerIsClinician)

	var resp TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "computed", resp.Source)
	assert.Equal(t, "Su total es Q150.00", resp.Text)
	require.NotNil(t, resp.Context)
	assert.Equal(t, "¿cuánto es el total?", resp.Context.LastQuery)
}

func TestChatTurnUsesAuthenticatedCaller(t *testing.T) {
	fake := &fakeResponder{}
	h := NewChatHandler(fake, quietLogger())

	rec := postTurn(t, http.HandlerFunc(h.Turn), `{"text":"estadísticas del mes"}`, &httpmiddleware.Caller{Clinician: true, Identity: "Ana Morales"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fake.last.CallerIsClinician)
	assert.Equal(t, "Ana Morales", fake.last.CallerIdentity)
}

func TestChatTurnRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"text":`, http.StatusBadRequest},
		{"empty text", `{"text":"   "}`, http.StatusBadRequest},
		{"bad role", `{"text":"hola","prior_turns":[{"role":"system","text":"x"}]}`, http.StatusBadRequest},
		{"too long", `{"text":"` + strings.Repeat("a", maxTurnTextRunes+1) + `"}`, http.StatusRequestEntityTooLarge},
		{"body too large", `{"text":"` + strings.Repeat("a", maxTurnBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeResponder{}
			h := NewChatHandler(fake, quietLogger())
			rec := postTurn(t, http.HandlerFunc(h.Turn), tc.body, nil)
			assert.Equal(t, tc.code, rec.Code)
			assert.Zero(t, fake.calls)
		})
	}
}

func TestChatTurnWithoutAssistant(t *testing.T) {
	h := NewChatHandler(nil, quietLogger())
	rec := postTurn(t, http.HandlerFunc(h.Turn), `{"text":"hola"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChatGreeting(t *testing.T) {
	h := NewChatHandler(&fakeResponder{}, quietLogger())
	req := httptest.NewRequest(http.MethodGet, "/v1/chat/greeting", nil)
	req = req.WithContext(httpmiddleware.WithCaller(req.Context(), httpmiddleware.Caller{Clinician: true, Identity: "Ana"}))
	rec := httptest.NewRecorder()

	h.Greeting(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp GreetingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hola, Dr(a). Ana", resp.Text)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type probeModel struct{ err error }

func (probeModel) Complete(context.Context, llm.Request) (llm.Response, error) {
	return llm.Response{}, nil
}

func (m probeModel) Available(context.Context) error { return m.err }

func getHealth(t *testing.T, h http.Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealth(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	code, resp := getHealth(t, NewHealthHandler(ok, probeModel{}, 0, quietLogger()))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, HealthResponse{Status: "ok", Store: "ok", Model: "ok"}, resp)

	code, resp = getHealth(t, NewHealthHandler(down, probeModel{}, 0, quietLogger()))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unavailable", resp.Store)

	code, resp = getHealth(t, NewHealthHandler(down, probeModel{err: llm.ErrUnavailable}, 0, quietLogger()))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", resp.Status)

	code, resp = getHealth(t, NewHealthHandler(ok, nil, 0, quietLogger()))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "disabled", resp.Model)
}
