// Package assistant resolves one chat turn through the fallback chain:
// local arithmetic, access gate, structured lookup, medical search, the
// external model, canned text and finally a fixed apology.
package assistant

import (
	"context"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
	"github.com/wolfman30/clinic-chat-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-chat-assistant/internal/session"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

var assistantTracer = otel.Tracer("clinicbot.internal.assistant")

// Source tags which chain state produced a response.
type Source string

const (
	SourceComputed Source = "computed"
	SourceLookup   Source = "lookup"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceError    Source = "error"
)

// Request is one user turn plus everything the caller knows about the
// conversation so far.
type Request struct {
	Text       string
	PriorTurns session.Transcript
	// Context is the value returned by the previous turn. When nil it is
	// rebuilt from PriorTurns.
	Context           *session.Context
	CallerIsClinician bool
	CallerIdentity    string
}

// Response is always well formed, whatever failed along the way.
type Response struct {
	Text    string
	Source  Source
	Context *session.Context
}

// Looker is the structured data side of the chain.
type Looker interface {
	Lookup(ctx context.Context, in intent.Intent, caller lookup.Caller) lookup.Result
	MedicalSearch(ctx context.Context, query, topic string) lookup.Result
	Profile() *clinic.Profile
}

const (
	defaultProbeTimeout = 3 * time.Second
	defaultModelTimeout = 10 * time.Second
	defaultMaxTokens    = 200
	defaultTemperature  = 0.7
	defaultHistoryTurns = 5
)

// Pipeline is safe for concurrent use; all per-turn state lives in the
// request and response values.
type Pipeline struct {
	lookups      Looker
	model        llm.Client
	profile      *clinic.Profile
	logger       *logging.Logger
	metrics      *metrics.AssistantMetrics
	probeTimeout time.Duration
	modelTimeout time.Duration
	maxTokens    int32
	temperature  float32
	historyTurns int
	pick         func(n int) int
	now          func() time.Time
	classify     func(text string, hints intent.Hints) intent.Set
}

type Option func(*Pipeline)

// WithModel sets the external model. Without one the chain goes from
// lookups straight to canned text.
func WithModel(c llm.Client) Option {
	return func(p *Pipeline) { p.model = c }
}

func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithMetrics(m *metrics.AssistantMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTimeouts bounds the availability probe and the generation call.
func WithTimeouts(probe, generate time.Duration) Option {
	return func(p *Pipeline) {
		if probe > 0 {
			p.probeTimeout = probe
		}
		if generate > 0 {
			p.modelTimeout = generate
		}
	}
}

// WithGeneration sets the model's token budget, temperature and how many
// trailing turns go into the prompt.
func WithGeneration(maxTokens int, temperature float64, historyTurns int) Option {
	return func(p *Pipeline) {
		if maxTokens > 0 {
			p.maxTokens = int32(maxTokens)
		}
		p.temperature = float32(temperature)
		if historyTurns > 0 {
			p.historyTurns = historyTurns
		}
	}
}

// WithPicker replaces the random choice of a generic canned reply.
func WithPicker(pick func(n int) int) Option {
	return func(p *Pipeline) {
		if pick != nil {
			p.pick = pick
		}
	}
}

// WithProfile sets the clinic profile used when there is no Looker to
// take it from.
func WithProfile(prof *clinic.Profile) Option {
	return func(p *Pipeline) { p.profile = prof }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New builds a pipeline over lookups, which may be nil when no data store
// is reachable.
func New(lookups Looker, opts ...Option) *Pipeline {
	p := &Pipeline{
		lookups:      lookups,
		logger:       logging.Default(),
		probeTimeout: defaultProbeTimeout,
		modelTimeout: defaultModelTimeout,
		maxTokens:    defaultMaxTokens,
		temperature:  defaultTemperature,
		historyTurns: defaultHistoryTurns,
		pick:         rand.IntN,
		now:          time.Now,
		classify:     intent.Classify,
	}
	for _, opt := range opts {
		opt(p)
	}
	if lookups != nil && lookups.Profile() != nil {
		p.profile = lookups.Profile()
	}
	if p.profile == nil {
		p.profile = clinic.DefaultProfile()
	}
	p.logger = p.logger.Component("assistant")
	return p
}

// Profile returns the clinic profile the pipeline answers for.
func (p *Pipeline) Profile() *clinic.Profile { return p.profile }

// Greeting is the first assistant message of a new conversation.
func (p *Pipeline) Greeting(clinician bool, identity string) string {
	return greeting(p.profile, clinician, identity)
}
