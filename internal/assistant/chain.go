package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/clinic-chat-assistant/internal/formatter"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
	"github.com/wolfman30/clinic-chat-assistant/internal/pricing"
	"github.com/wolfman30/clinic-chat-assistant/internal/session"
)

// AccessDenied answers gated statistics for callers who are not clinicians.
const AccessDenied = "Acceso restringido. Esta información solo está disponible para médicos autorizados. Si usted es parte del personal médico, inicie sesión en el portal de doctores."

// lookupOrder is the priority in which structured lookups are attempted.
var lookupOrder = []intent.Kind{
	intent.KindForgotCode,
	intent.KindAppointmentByCode,
	intent.KindAppointmentByAttributes,
	intent.KindAdvancedAnalytics,
	intent.KindStatistics,
	intent.KindDoctor,
	intent.KindGeneralInfo,
}

// turn carries the per-request state through the chain.
type turn struct {
	req     Request
	sess    *session.Context
	intents intent.Set
	caller  lookup.Caller
	// evidence holds partial lookup hits that did not answer the turn.
	evidence []lookup.Result
}

type answer struct {
	text   string
	source Source
}

// stateFunc returns ok=false to fall through to the next state.
type stateFunc func(ctx context.Context, t *turn) (answer, bool, error)

type state struct {
	name string
	run  stateFunc
}

func (p *Pipeline) states() []state {
	return []state{
		{"computed", p.computeTotals},
		{"access_gate", p.accessGate},
		{"lookup", p.structuredLookup},
		{"medical_search", p.medicalSearch},
		{"model", p.askModel},
		{"canned", p.canned},
	}
}

// Respond resolves one turn. It never returns an error: every failure
// becomes a fallthrough, and if all states fail the caller gets a fixed
// apology with source "error".
func (p *Pipeline) Respond(ctx context.Context, req Request) (resp Response) {
	started := time.Now()
	ctx, span := assistantTracer.Start(ctx, "assistant.respond")
	defer span.End()

	var t *turn
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("assistant: turn panicked", "panic", fmt.Sprint(r))
			span.SetStatus(codes.Error, "panic")
			var sess *session.Context
			if t != nil {
				sess = t.sess
			}
			resp = p.terminal(sess)
		}
		var kinds []string
		if t != nil {
			kinds = kindNames(t.intents)
		}
		span.SetAttributes(attribute.String("clinicbot.source", string(resp.Source)))
		p.metrics.ObserveTurn(string(resp.Source))
		p.logger.Info("assistant: turn resolved",
			"source", string(resp.Source),
			"intents", kinds,
			"clinician", req.CallerIsClinician,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}()

	t = p.newTurn(req)
	span.SetAttributes(
		attribute.Bool("clinicbot.clinician", req.CallerIsClinician),
		attribute.StringSlice("clinicbot.intents", kindNames(t.intents)),
	)

	for _, st := range p.states() {
		if ctx.Err() != nil && st.name != "canned" {
			continue
		}
		ans, ok := p.guard(ctx, st, t)
		if ok {
			return Response{Text: ans.text, Source: ans.source, Context: t.sess}
		}
	}
	return p.terminal(t.sess)
}

func (p *Pipeline) newTurn(req Request) *turn {
	var sess *session.Context
	if req.Context == nil {
		sess = session.Replay(req.PriorTurns)
	} else {
		sess = req.Context.Clone()
		for _, prior := range req.PriorTurns {
			if prior.Role == session.RoleAssistant {
				sess.ObserveAssistantTurn(prior.Text)
			}
		}
	}
	sess.ObserveUserTurn(req.Text)
	return &turn{
		req:     req,
		sess:    sess,
		intents: p.classify(req.Text, sess.Hints()),
		caller:  lookup.Caller{Clinician: req.CallerIsClinician, Identity: req.CallerIdentity},
	}
}

// guard runs one state, converting an error or a panic into a fallthrough.
func (p *Pipeline) guard(ctx context.Context, st state, t *turn) (ans answer, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("assistant: state panicked", "state", st.name, "panic", fmt.Sprint(r))
			ans, ok = answer{}, false
		}
	}()
	ans, ok, err := st.run(ctx, t)
	if err != nil {
		p.logger.Warn("assistant: state failed", "state", st.name, "error", err)
		return answer{}, false
	}
	if ok && strings.TrimSpace(ans.text) == "" {
		return answer{}, false
	}
	return ans, ok
}

func (p *Pipeline) terminal(sess *session.Context) Response {
	return Response{Text: terminalMessage(p.profile), Source: SourceError, Context: sess}
}

// computeTotals answers total and tax questions from the quoted prices.
func (p *Pipeline) computeTotals(_ context.Context, t *turn) (answer, bool, error) {
	if tax, ok := intent.Find[intent.TaxRequest](t.intents); ok {
		q := pricing.TaxQuestion{IsTaxQuestion: true, Type: tax.Type, RatePercent: tax.RatePercent}
		return answer{pricing.CalculateTotal(t.sess.MentionedPrices, q), SourceComputed}, true, nil
	}
	if t.intents.Has(intent.KindTotal) {
		return answer{pricing.CalculateTotal(t.sess.MentionedPrices, pricing.TaxQuestion{}), SourceComputed}, true, nil
	}
	return answer{}, false, nil
}

// accessGate refuses gated statistics before any store query is made.
func (p *Pipeline) accessGate(_ context.Context, t *turn) (answer, bool, error) {
	if t.caller.Clinician {
		return answer{}, false, nil
	}
	if q, ok := intent.Find[intent.StatisticsQuery](t.intents); ok && q.RequiresClinician {
		return answer{AccessDenied, SourceComputed}, true, nil
	}
	if q, ok := intent.Find[intent.AdvancedAnalyticsQuery](t.intents); ok && q.RequiresClinician() {
		return answer{AccessDenied, SourceComputed}, true, nil
	}
	return answer{}, false, nil
}

func (p *Pipeline) structuredLookup(ctx context.Context, t *turn) (answer, bool, error) {
	for _, kind := range lookupOrder {
		in, ok := t.intents.Get(kind)
		if !ok {
			continue
		}
		if kind == intent.KindDoctor && asksPrice(t.intents) {
			continue
		}
		if ans, ok := p.lookupOne(ctx, t, in); ok {
			return ans, true, nil
		}
	}
	return answer{}, false, nil
}

func (p *Pipeline) lookupOne(ctx context.Context, t *turn, in intent.Intent) (answer, bool) {
	switch q := in.(type) {
	case intent.ForgotAppointmentCode:
		if !q.HasFilters() {
			return answer{formatter.ForgotCodePrompt(), SourceComputed}, true
		}
	case intent.AppointmentByCode:
		if q.Code == "" {
			return answer{}, false
		}
	}
	if p.lookups == nil {
		return answer{}, false
	}

	ctx, span := assistantTracer.Start(ctx, "assistant.lookup")
	defer span.End()
	span.SetAttributes(attribute.String("clinicbot.intent", in.Kind().String()))

	res := p.lookups.Lookup(ctx, in, t.caller)
	span.SetAttributes(attribute.String("clinicbot.lookup_result", res.Kind.String()))
	switch res.Kind {
	case lookup.Found:
		text := formatter.Result(res)
		if text == "" {
			return answer{}, false
		}
		p.rememberAppointment(t.sess, res)
		return answer{text, SourceLookup}, true
	case lookup.AmbiguousMultiple:
		return answer{formatter.Ambiguous(res.Count), SourceLookup}, true
	case lookup.LookupError:
		span.SetStatus(codes.Error, res.Reason)
	}
	return answer{}, false
}

// rememberAppointment keeps the code of a single resolved appointment so
// the next turn can refer to it.
func (p *Pipeline) rememberAppointment(sess *session.Context, res lookup.Result) {
	appts, ok := res.Payload.(lookup.Appointments)
	if !ok || len(appts.Items) != 1 {
		return
	}
	if code := appts.Items[0].Code; code != "" {
		sess.LastAppointmentCode = code
	}
}

// strongMatchScore is the article score from which a medical search hit is
// answered directly; weaker hits only inform the model prompt.
const strongMatchScore = 3

func (p *Pipeline) medicalSearch(ctx context.Context, t *turn) (answer, bool, error) {
	q, ok := intent.Find[intent.MedicalInfoQuery](t.intents)
	if !ok || p.lookups == nil {
		return answer{}, false, nil
	}
	res := p.lookups.MedicalSearch(ctx, t.req.Text, q.Topic)
	article, ok := res.Payload.(lookup.MedicalArticle)
	if res.Kind != lookup.Found || !ok {
		return answer{}, false, nil
	}
	if article.Score < strongMatchScore {
		t.evidence = append(t.evidence, res)
		return answer{}, false, nil
	}
	return answer{formatter.MedicalArticle(article), SourceLookup}, true, nil
}

func (p *Pipeline) askModel(ctx context.Context, t *turn) (answer, bool, error) {
	if p.model == nil {
		return answer{}, false, nil
	}
	ctx, span := assistantTracer.Start(ctx, "assistant.model")
	defer span.End()

	probeCtx, cancelProbe := context.WithTimeout(ctx, p.probeTimeout)
	err := llm.Probe(probeCtx, p.model)
	cancelProbe()
	if err != nil {
		p.metrics.ObserveLLM("unavailable", 0)
		span.RecordError(err)
		return answer{}, false, fmt.Errorf("assistant: model probe: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, p.modelTimeout)
	defer cancel()
	started := time.Now()
	text, err := llm.Generate(genCtx, p.model, t.req.Text, p.systemPrompt(t), p.maxTokens, p.temperature)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			status = "timeout"
		}
		p.metrics.ObserveLLM(status, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		return answer{}, false, fmt.Errorf("assistant: model generate: %w", err)
	}
	p.metrics.ObserveLLM("ok", elapsed)
	t.sess.ObserveAssistantTurn(text)
	return answer{text, SourceModel}, true, nil
}

func (p *Pipeline) canned(_ context.Context, t *turn) (answer, bool, error) {
	text := p.cannedReply(t)
	t.sess.ObserveAssistantTurn(text)
	return answer{text, SourceFallback}, true, nil
}

// asksPrice reports a price question, which a doctor mentioned in passing
// ("la consulta con la doctora Méndez") must not turn into a doctor listing.
func asksPrice(set intent.Set) bool {
	g, ok := intent.Find[intent.GeneralInfoQuery](set)
	return ok && g.Category == intent.CategoryPrices
}

func kindNames(set intent.Set) []string {
	kinds := set.Kinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.String())
	}
	return out
}
