package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

const (
	defaultTimeout   = 3 * time.Second
	doctorResultCap  = 5
	doctorIDLimit    = 50
	forgotCodeWindow = 7
)

// Caller is who is asking. Clinicians may see gated statistics and patient
// names.
type Caller struct {
	Clinician bool
	Identity  string
}

// Adapter queries the store on behalf of the resolution chain. Every store
// failure is returned as a LookupError result, never as an error.
type Adapter struct {
	store   clinicdata.Store
	profile *clinic.Profile
	now     func() time.Time
	timeout time.Duration
	metrics *metrics.AssistantMetrics
	logger  *logging.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithTimeout bounds each store round trip.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithMetrics records lookup outcomes.
func WithMetrics(m *metrics.AssistantMetrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New builds an adapter. A nil store makes every lookup a LookupError; a
// nil profile uses the default clinic profile.
func New(store clinicdata.Store, profile *clinic.Profile, opts ...Option) *Adapter {
	if profile == nil {
		profile = clinic.DefaultProfile()
	}
	a := &Adapter{
		store:   store,
		profile: profile,
		now:     time.Now,
		timeout: defaultTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Profile returns the clinic profile static answers come from.
func (a *Adapter) Profile() *clinic.Profile { return a.profile }

// today is the clinic's current calendar date at UTC midnight, the form
// dates are stored and compared in.
func (a *Adapter) today() time.Time {
	local := a.now().In(a.profile.TimeLocation())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Lookup resolves in against the store.
func (a *Adapter) Lookup(ctx context.Context, in intent.Intent, caller Caller) Result {
	if in == nil {
		return notFound("no intent")
	}
	res := a.lookup(ctx, in, caller)
	a.metrics.ObserveLookup(in.Kind().String(), res.Kind.String())
	return res
}

func (a *Adapter) lookup(ctx context.Context, in intent.Intent, caller Caller) Result {
	if a.store == nil {
		return a.failed(in.Kind(), clinicdata.ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		res Result
		err error
	)
	switch q := in.(type) {
	case intent.AppointmentByCode:
		res, err = a.byCode(ctx, q, caller)
	case intent.ForgotAppointmentCode:
		res, err = a.forgotCode(ctx, q, caller)
	case intent.AppointmentByAttributes:
		res, err = a.byAttributes(ctx, q, caller)
	case intent.DoctorQuery:
		res, err = a.doctors(ctx, q)
	case intent.GeneralInfoQuery:
		res, err = a.generalInfo(ctx, q)
	case intent.StatisticsQuery:
		res, err = a.statistics(ctx, q, caller)
	case intent.AdvancedAnalyticsQuery:
		res, err = a.analytics(ctx, q, caller)
	case intent.MedicalInfoQuery:
		res, err = a.medical(ctx, "", q.Topic)
	default:
		return notFound("unsupported intent " + in.Kind().String())
	}
	if err != nil {
		return a.failed(in.Kind(), err)
	}
	return res
}

func (a *Adapter) failed(kind intent.Kind, err error) Result {
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	}
	a.logger.Warn("lookup: store query failed", "intent", kind.String(), "error", err)
	return Result{Kind: LookupError, Reason: reason}
}

// MedicalSearch ranks medical-info articles by keyword overlap with query,
// boosting articles that mention topic.
func (a *Adapter) MedicalSearch(ctx context.Context, query, topic string) Result {
	if a.store == nil {
		return a.failed(intent.KindMedicalInfo, clinicdata.ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	res, err := a.medical(ctx, query, topic)
	if err != nil {
		res = a.failed(intent.KindMedicalInfo, err)
	}
	a.metrics.ObserveLookup(intent.KindMedicalInfo.String(), res.Kind.String())
	return res
}
