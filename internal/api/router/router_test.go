package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/clinic-chat-assistant/internal/assistant"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-chat-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

const testSecret = "router-secret"

func newTestRouter(t *testing.T, limiter *httpmiddleware.RateLimiter) http.Handler {
	t.Helper()

	logger := logging.NewWithWriter("error", &bytes.Buffer{})
	store := clinicdata.NewMemoryStore(clinicdata.SampleData(time.Now().UTC()))
	looker := lookup.New(store, clinic.DefaultProfile())
	pipeline := assistant.New(looker, assistant.WithLogger(logger))

	cfg := &Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(pipeline, logger),
		CORSAllowedOrigins: []string{"*"},
		ClinicianJWTSecret: testSecret,
		RateLimiter:        limiter,
	}
	return New(cfg)
}

func postTurn(t *testing.T, router http.Handler, text, token string) (int, handlers.TurnResponse) {
	t.Helper()
	body, err := json.Marshal(handlers.TurnRequest{Text: text})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/turns", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp handlers.TurnResponse
	if rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode turn response: %v", err)
		}
	}
	return rr.Code, resp
}

func clinicianToken(t *testing.T) string {
	t.Helper()
	claims := httpmiddleware.ClinicianClaims{
		Role: httpmiddleware.RoleClinician,
		Name: "Ana Morales",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterChatTurnEndToEnd(t *testing.T) {
	router := newTestRouter(t, nil)

	code, resp := postTurn(t, router, "¿Cuál es el estado de mi cita 0042?", "")
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}
	if resp.Source != "lookup" {
		t.Fatalf("expected lookup source, got %q (%s)", resp.Source, resp.Text)
	}
	if !strings.Contains(resp.Text, "0042") {
		t.Fatalf("expected appointment code in reply, got %q", resp.Text)
	}
	if resp.Context == nil || resp.Context.LastAppointmentCode != "0042" {
		t.Fatalf("expected context to remember the code, got %+v", resp.Context)
	}
}

func TestRouterGatesStatisticsByToken(t *testing.T) {
	router := newTestRouter(t, nil)

	_, patient := postTurn(t, router, "¿Cuál es la tasa de reconsultas?", "")
	if patient.Text != assistant.AccessDenied {
		t.Fatalf("expected access denied for patient, got %q", patient.Text)
	}

	code, doctor := postTurn(t, router, "¿Cuál es la tasa de reconsultas?", clinicianToken(t))
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}
	if doctor.Text == assistant.AccessDenied {
		t.Fatalf("expected clinician to pass the gate")
	}

	code, _ = postTurn(t, router, "hola", "not-a-token")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, code)
	}
}

func TestRouterRateLimitsChat(t *testing.T) {
	router := newTestRouter(t, httpmiddleware.NewRateLimiter(0.001, 1))

	if code, _ := postTurn(t, router, "hola", ""); code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}
	if code, _ := postTurn(t, router, "hola", ""); code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", rr.Code)
	}
}
