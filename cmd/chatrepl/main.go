package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/clinic-chat-assistant/cmd/mainconfig"
	"github.com/wolfman30/clinic-chat-assistant/internal/app/bootstrap"
	"github.com/wolfman30/clinic-chat-assistant/internal/assistant"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	appconfig "github.com/wolfman30/clinic-chat-assistant/internal/config"
	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/internal/session"
	"github.com/wolfman30/clinic-chat-assistant/internal/webchat"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

// Chatter is one conversation, local or remote.
type Chatter interface {
	Greeting() (string, error)
	Send(ctx context.Context, text string) (reply, source string, err error)
	Close() error
}

// ReplOptions injects IO for tests.
type ReplOptions struct {
	Chatter Chatter
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Message string
	Verbose bool
}

var (
	messageFlag   string
	urlFlag       string
	tokenFlag     string
	clinicianFlag bool
	nameFlag      string
	modelFlag     bool
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "chatrepl",
	Short: "Talk to the clinic assistant from the terminal",
	RunE:  runChat,
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check the configured LLM providers and send one test prompt",
	RunE:  runProbe,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	f.StringVar(&urlFlag, "url", "", "Websocket URL of a running server (ws://host:port/v1/chat/ws)")
	f.StringVar(&tokenFlag, "token", "", "Clinician bearer token for --url mode")
	f.BoolVar(&clinicianFlag, "clinician", false, "Talk as an authenticated clinician (local mode)")
	f.StringVar(&nameFlag, "name", "", "Clinician name (local mode)")
	f.BoolVar(&modelFlag, "model", false, "Use the configured LLM provider (local mode)")
	f.BoolVarP(&verboseFlag, "verbose", "v", false, "Print the source of every answer")
	rootCmd.AddCommand(probeCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	var (
		chatter Chatter
		err     error
	)
	if urlFlag != "" {
		chatter, err = dialRemote(urlFlag, tokenFlag)
	} else {
		chatter, err = newLocal(cmd.Context(), clinicianFlag, nameFlag, modelFlag)
	}
	if err != nil {
		return err
	}
	return runRepl(cmd.Context(), ReplOptions{Chatter: chatter, Message: messageFlag, Verbose: verboseFlag})
}

func runRepl(ctx context.Context, opts ReplOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	defer func() { _ = opts.Chatter.Close() }()

	show := func(reply, source string) {
		if opts.Verbose && source != "" {
			fmt.Fprintf(stdout, "[%s] ", source)
		}
		fmt.Fprintln(stdout, reply)
	}

	if opts.Message != "" {
		reply, source, err := opts.Chatter.Send(ctx, opts.Message)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		show(reply, source)
		return nil
	}

	greeting, err := opts.Chatter.Greeting()
	if err != nil {
		return fmt.Errorf("greeting: %w", err)
	}
	fmt.Fprintln(stdout, greeting)
	fmt.Fprintln(stdout, "(escriba 'salir' para terminar)")

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "salir", "exit", "quit":
			return nil
		}
		reply, source, err := opts.Chatter.Send(ctx, input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			continue
		}
		show(reply, source)
	}
	return scanner.Err()
}

// localChatter runs the pipeline in-process against the sample dataset and
// keeps the conversation the way the websocket handler does.
type localChatter struct {
	pipeline   *assistant.Pipeline
	clinician  bool
	identity   string
	context    *session.Context
	transcript session.Transcript
}

func newLocal(ctx context.Context, clinician bool, name string, useModel bool) (*localChatter, error) {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	profile, err := cfg.Profile()
	if err != nil {
		return nil, fmt.Errorf("clinic profile: %w", err)
	}

	var model llm.Client
	if useModel {
		model, err = buildModel(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}
	store := clinicdata.NewMemoryStore(clinicdata.SampleData(time.Now().UTC()))
	pipeline, err := bootstrap.BuildPipeline(cfg, store, profile, model, nil, logger)
	if err != nil {
		return nil, err
	}
	return &localChatter{pipeline: pipeline, clinician: clinician, identity: name, context: &session.Context{}}, nil
}

func (l *localChatter) Greeting() (string, error) {
	g := l.pipeline.Greeting(l.clinician, l.identity)
	l.transcript = append(l.transcript, session.Turn{Role: session.RoleAssistant, Text: g})
	return g, nil
}

func (l *localChatter) Send(ctx context.Context, text string) (string, string, error) {
	resp := l.pipeline.Respond(ctx, assistant.Request{
		Text:              text,
		PriorTurns:        l.transcript,
		Context:           l.context,
		CallerIsClinician: l.clinician,
		CallerIdentity:    l.identity,
	})
	if resp.Context != nil {
		l.context = resp.Context
	}
	l.transcript = append(l.transcript,
		session.Turn{Role: session.RoleUser, Text: text},
		session.Turn{Role: session.RoleAssistant, Text: resp.Text},
	)
	return resp.Text, string(resp.Source), nil
}

func (l *localChatter) Close() error { return nil }

// remoteChatter talks to a running server's websocket.
type remoteChatter struct {
	conn     *websocket.Conn
	greeting string
}

func dialRemote(url, token string) (*remoteChatter, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	r := &remoteChatter{conn: conn}
	// The server opens with the session id and the greeting.
	for r.greeting == "" {
		msg, err := r.read(10 * time.Second)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		if msg.Type == "message" {
			r.greeting = msg.Text
		}
	}
	return r, nil
}

func (r *remoteChatter) read(timeout time.Duration) (webchat.OutboundMessage, error) {
	var msg webchat.OutboundMessage
	_ = r.conn.SetReadDeadline(time.Now().Add(timeout))
	if err := r.conn.ReadJSON(&msg); err != nil {
		return msg, fmt.Errorf("read: %w", err)
	}
	return msg, nil
}

func (r *remoteChatter) Greeting() (string, error) { return r.greeting, nil }

func (r *remoteChatter) Send(_ context.Context, text string) (string, string, error) {
	if err := r.conn.WriteJSON(webchat.InboundMessage{Type: "message", Text: text}); err != nil {
		return "", "", fmt.Errorf("write: %w", err)
	}
	for {
		msg, err := r.read(60 * time.Second)
		if err != nil {
			return "", "", err
		}
		switch msg.Type {
		case "message":
			return msg.Text, msg.Source, nil
		case "error":
			return "", "", fmt.Errorf("server: %s", msg.Text)
		}
	}
}

func (r *remoteChatter) Close() error {
	_ = r.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return r.conn.Close()
}

func buildModel(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	var bedrock llm.ConverseAPI
	if mainconfig.UsesBedrock(cfg) {
		client, err := mainconfig.NewBedrockRuntime(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bedrock runtime: %w", err)
		}
		bedrock = client
	}
	return bootstrap.BuildLLMClient(ctx, cfg, bedrock, logger)
}

func runProbe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	cfg := appconfig.Load()
	out := cmd.OutOrStdout()
	model, err := buildModel(ctx, cfg, logging.New("error"))
	if err != nil {
		return err
	}
	if model == nil {
		return fmt.Errorf("no LLM provider configured (LLM_PROVIDER=%q)", cfg.LLMProvider)
	}

	fmt.Fprintf(out, "provider: %s", cfg.LLMProvider)
	if cfg.LLMFallbackProvider != "" {
		fmt.Fprintf(out, " (fallback %s)", cfg.LLMFallbackProvider)
	}
	fmt.Fprintln(out)

	probeCtx, cancelProbe := context.WithTimeout(ctx, cfg.LLMProbeTimeout)
	err = llm.Probe(probeCtx, model)
	cancelProbe()
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	fmt.Fprintln(out, "probe: ok")

	start := time.Now()
	text, err := llm.Generate(ctx, model, "¿A qué hora abren los sábados?",
		"Eres la asistente virtual de una clínica. Responde en una oración.", int32(cfg.LLMMaxTokens), float32(cfg.LLMTemperature))
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	fmt.Fprintf(out, "reply (%v): %s\n", time.Since(start).Round(time.Millisecond), text)
	return nil
}
