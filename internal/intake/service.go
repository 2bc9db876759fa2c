// Package intake turns contact form submissions into delivered, stored leads.
package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iglloo/lead-intake/internal/commentary"
	"github.com/iglloo/lead-intake/internal/geo"
	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/internal/notify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrNoChannels is returned when neither notification channel is configured.
var ErrNoChannels = errors.New("intake: no notification channel configured")

const defaultTimeout = 10 * time.Second

const tracerName = "iglloo.internal.intake"

// Options wires the collaborators of a Service. Every collaborator except at
// least one channel is optional.
type Options struct {
	Rules      leads.Rules
	Primary    *notify.Channel
	Secondary  *notify.Channel
	Store      leads.Store
	Locator    geo.Locator
	Advisor    commentary.Advisor
	Observer   Observer
	Timeout    time.Duration
	Concurrent bool
	Now        func() time.Time
	NewID      func() string
	Tracer     trace.Tracer // defaults to the global provider's tracer
}

// RequestMeta carries the transport details the pipeline records.
type RequestMeta struct {
	RemoteAddr   string
	ForwardedFor string
	UserAgent    string
}

// Result describes an acknowledged submission. Lead is nil when suppressed.
type Result struct {
	Outcome Outcome
	Lead    *leads.Lead
}

// Service runs the intake pipeline. It holds no per-request state.
type Service struct {
	rules      leads.Rules
	primary    *notify.Channel
	secondary  *notify.Channel
	store      leads.Store
	locator    geo.Locator
	advisor    commentary.Advisor
	observer   Observer
	timeout    time.Duration
	concurrent bool
	now        func() time.Time
	newID      func() string
	tracer     trace.Tracer
}

// NewService applies defaults to opts.
func NewService(opts Options) *Service {
	s := &Service{
		rules:      opts.Rules,
		primary:    opts.Primary,
		secondary:  opts.Secondary,
		store:      opts.Store,
		locator:    opts.Locator,
		advisor:    opts.Advisor,
		observer:   opts.Observer,
		timeout:    opts.Timeout,
		concurrent: opts.Concurrent,
		now:        opts.Now,
		newID:      opts.NewID,
		tracer:     opts.Tracer,
	}
	if s.observer == nil {
		s.observer = MultiObserver(nil)
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Submit processes one submission. The only errors returned are a
// *leads.ValidationError and ErrNoChannels; collaborator failures go to the
// observer and never change the acknowledgment.
func (s *Service) Submit(ctx context.Context, sub leads.Submission, meta RequestMeta) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "intake.submit", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	if sub.IsBot() {
		span.SetAttributes(attribute.String("lead.outcome", string(OutcomeSuppressed)))
		s.observer.SubmissionHandled(ctx, OutcomeSuppressed, nil)
		return Result{Outcome: OutcomeSuppressed}, nil
	}

	sub = sub.Normalize()
	if verr := leads.Validate(sub, s.rules); verr != nil {
		span.SetAttributes(attribute.String("lead.outcome", string(OutcomeRejected)))
		s.observer.SubmissionHandled(ctx, OutcomeRejected, nil)
		return Result{}, verr
	}
	if s.primary == nil && s.secondary == nil {
		span.SetStatus(codes.Error, ErrNoChannels.Error())
		return Result{}, ErrNoChannels
	}

	lead := leads.NewLead(s.newID(), sub, s.now().UTC())
	spam := leads.Score(sub)
	lead.SpamScore = spam.Score
	lead.SpamSignals = spam.Signals
	lead.IPAddress = leads.ClientIPFrom(meta.ForwardedFor, meta.RemoteAddr)
	lead.UserAgent = meta.UserAgent

	span.SetAttributes(
		attribute.String("lead.id", lead.ID),
		attribute.Float64("lead.spam_score", lead.SpamScore),
		attribute.StringSlice("lead.spam_signals", lead.SpamSignals),
	)

	s.enrich(ctx, lead)
	s.deliver(ctx, lead)
	if s.store != nil {
		s.runStage(ctx, StagePersistence, lead.ID, func(ctx context.Context) error {
			return s.store.Insert(ctx, lead)
		})
	}

	span.SetAttributes(attribute.String("lead.outcome", string(OutcomeAccepted)))
	s.observer.SubmissionHandled(ctx, OutcomeAccepted, lead)
	return Result{Outcome: OutcomeAccepted, Lead: lead}, nil
}

// enrich resolves the visitor country and the AI commentary. In concurrent
// mode the commentary prompt is built before the country is known.
func (s *Service) enrich(ctx context.Context, lead *leads.Lead) {
	locate := func() {
		if s.locator == nil || leads.IsPrivateIP(lead.IPAddress) {
			return
		}
		var country string
		if s.runStage(ctx, StageGeolocation, lead.ID, func(ctx context.Context) error {
			var err error
			country, err = s.locator.Country(ctx, lead.IPAddress)
			return err
		}) {
			lead.VisitorCountry = &country
		}
	}
	comment := func(in commentary.Input) {
		if s.advisor == nil {
			return
		}
		var note string
		if s.runStage(ctx, StageCommentary, lead.ID, func(ctx context.Context) error {
			var err error
			note, err = s.advisor.Comment(ctx, in)
			return err
		}) {
			lead.Commentary = note
		}
	}

	if !s.concurrent {
		locate()
		comment(commentary.InputFromLead(lead))
		return
	}
	in := commentary.InputFromLead(lead)
	var g errgroup.Group
	g.Go(func() error { locate(); return nil })
	g.Go(func() error { comment(in); return nil })
	_ = g.Wait()
}

// deliver attempts both channels. Neither outcome affects the other.
func (s *Service) deliver(ctx context.Context, lead *leads.Lead) {
	msg := notify.RenderLead(lead, lead.Commentary)
	send := func(stage Stage, ch *notify.Channel) {
		if ch == nil {
			return
		}
		s.runStage(ctx, stage, lead.ID, func(ctx context.Context) error {
			return ch.Deliver(ctx, msg)
		})
	}

	if !s.concurrent {
		send(StagePrimary, s.primary)
		send(StageSecondary, s.secondary)
		return
	}
	var g errgroup.Group
	g.Go(func() error { send(StagePrimary, s.primary); return nil })
	g.Go(func() error { send(StageSecondary, s.secondary); return nil })
	_ = g.Wait()
}

// runStage calls fn detached from the request's cancellation with the
// per-call timeout, and reports the result. Panics in fn count as failures.
func (s *Service) runStage(ctx context.Context, stage Stage, leadID string, fn func(ctx context.Context) error) (ok bool) {
	ctx, span := s.tracer.Start(ctx, "intake.stage."+string(stage), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &stagePanic{value: r}
			}
		}()
		return fn(callCtx)
	}()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.observer.StageFailed(ctx, stage, leadID, err)
		return false
	}
	s.observer.StageSucceeded(ctx, stage, leadID, time.Since(start))
	return true
}
