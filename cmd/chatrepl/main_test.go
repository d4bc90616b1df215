package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/clinic-chat-assistant/internal/assistant"
	"github.com/wolfman30/clinic-chat-assistant/internal/webchat"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

type fakeChatter struct {
	sent   []string
	err    error
	closed bool
}

func (f *fakeChatter) Greeting() (string, error) { return "¡Hola!", nil }

func (f *fakeChatter) Send(_ context.Context, text string) (string, string, error) {
	f.sent = append(f.sent, text)
	if f.err != nil {
		return "", "", f.err
	}
	return "eco: " + text, "computed", nil
}

func (f *fakeChatter) Close() error {
	f.closed = true
	return nil
}

func TestRunReplSingleMessage(t *testing.T) {
	chatter := &fakeChatter{}
	var out bytes.Buffer
	err := runRepl(context.Background(), ReplOptions{Chatter: chatter, Stdout: &out, Message: "hola", Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.String(); got != "[computed] eco: hola\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if !chatter.closed {
		t.Fatalf("expected chatter to be closed")
	}
}

func TestRunReplLoopStopsOnSalir(t *testing.T) {
	chatter := &fakeChatter{}
	var out bytes.Buffer
	in := strings.NewReader("uno\n\n  dos  \nsalir\ntres\n")
	if err := runRepl(context.Background(), ReplOptions{Chatter: chatter, Stdin: in, Stdout: &out}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chatter.sent) != 2 || chatter.sent[0] != "uno" || chatter.sent[1] != "dos" {
		t.Fatalf("unexpected messages %v", chatter.sent)
	}
	if !strings.HasPrefix(out.String(), "¡Hola!\n") || !strings.Contains(out.String(), "eco: dos") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunReplReportsErrorsAndContinues(t *testing.T) {
	chatter := &fakeChatter{err: errors.New("boom")}
	var out, errOut bytes.Buffer
	in := strings.NewReader("uno\ndos\n")
	if err := runRepl(context.Background(), ReplOptions{Chatter: chatter, Stdin: in, Stdout: &out, Stderr: &errOut}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(errOut.String(), "Error: boom") != 2 {
		t.Fatalf("expected both errors reported, got %q", errOut.String())
	}
}

func TestLocalChatterKeepsAppointmentContext(t *testing.T) {
	t.Setenv("CLINIC_PROFILE_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
	local, err := newLocal(context.Background(), false, "", false)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if _, err := local.Greeting(); err != nil {
		t.Fatalf("greeting: %v", err)
	}

	_, source, err := local.Send(context.Background(), "¿Cuál es el estado de mi cita 0042?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if source != string(assistant.SourceLookup) {
		t.Fatalf("expected lookup source, got %q", source)
	}
	if local.context.LastAppointmentCode != "0042" {
		t.Fatalf("expected appointment code kept, got %q", local.context.LastAppointmentCode)
	}
	if len(local.transcript) != 3 {
		t.Fatalf("expected greeting plus one exchange, got %d turns", len(local.transcript))
	}
}

func TestRemoteChatterOverWebsocket(t *testing.T) {
	t.Setenv("CLINIC_PROFILE_PATH", "")
	local, err := newLocal(context.Background(), false, "", false)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(webchat.NewHandler(local.pipeline, nil, logging.New("error")).HandleWebSocket))
	defer srv.Close()

	remote, err := dialRemote("ws"+strings.TrimPrefix(srv.URL, "http"), "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer remote.Close()

	greeting, _ := remote.Greeting()
	if !strings.Contains(greeting, "asistente virtual") {
		t.Fatalf("unexpected greeting %q", greeting)
	}
	reply, source, err := remote.Send(context.Background(), "¿Cuál es el estado de mi cita 0042?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if source != string(assistant.SourceLookup) || !strings.Contains(reply, "0042") {
		t.Fatalf("unexpected reply %q from %q", reply, source)
	}
}
