package intake

import (
	"context"
	"sync"
	"time"

	"github.com/iglloo/lead-intake/internal/commentary"
	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/internal/notify"
	"go.opentelemetry.io/otel/trace/noop"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []notify.EmailMessage
	err   error
	delay time.Duration
}

func (f *fakeSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeSender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeStore struct {
	mu       sync.Mutex
	inserted []leads.Lead
	err      error
	panicV   any
}

func (f *fakeStore) Insert(ctx context.Context, lead *leads.Lead) error {
	if f.panicV != nil {
		panic(f.panicV)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, *lead)
	return f.err
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeLocator struct {
	mu      sync.Mutex
	country string
	err     error
	ips     []string
}

func (f *fakeLocator) Country(ctx context.Context, ip string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ips = append(f.ips, ip)
	return f.country, f.err
}

func (f *fakeLocator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ips)
}

type fakeAdvisor struct {
	mu     sync.Mutex
	note   string
	err    error
	inputs []commentary.Input
}

func (f *fakeAdvisor) Comment(ctx context.Context, in commentary.Input) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return f.note, f.err
}

func (f *fakeAdvisor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type recordingObserver struct {
	mu        sync.Mutex
	failed    map[Stage]error
	succeeded map[Stage]int
	outcomes  []Outcome
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{failed: map[Stage]error{}, succeeded: map[Stage]int{}}
}

func (o *recordingObserver) StageFailed(ctx context.Context, stage Stage, leadID string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed[stage] = err
}

func (o *recordingObserver) StageSucceeded(ctx context.Context, stage Stage, leadID string, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.succeeded[stage]++
}

func (o *recordingObserver) SubmissionHandled(ctx context.Context, outcome Outcome, lead *leads.Lead) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

type fixture struct {
	primary   *fakeSender
	secondary *fakeSender
	store     *fakeStore
	locator   *fakeLocator
	advisor   *fakeAdvisor
	observer  *recordingObserver
}

func newFixture() *fixture {
	return &fixture{
		primary:   &fakeSender{},
		secondary: &fakeSender{},
		store:     &fakeStore{},
		locator:   &fakeLocator{country: "Germany"},
		advisor:   &fakeAdvisor{note: "Retiring couple, ask about visas."},
		observer:  newRecordingObserver(),
	}
}

func (f *fixture) options() Options {
	return Options{
		Primary:   notify.NewChannel("primary", f.primary, "contact@iglloo.online"),
		Secondary: notify.NewChannel("secondary", f.secondary, "iglloo.online@gmail.com"),
		Store:     f.store,
		Locator:   f.locator,
		Advisor:   f.advisor,
		Observer:  f.observer,
		Timeout:   time.Second,
		Now:       func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) },
		NewID:     func() string { return "lead-1" },
		Tracer:    noop.NewTracerProvider().Tracer("intake-test"),
	}
}

func (f *fixture) collaboratorCalls() int {
	return f.primary.calls() + f.secondary.calls() + f.store.calls() + f.locator.calls() + f.advisor.calls()
}

func scenarioA() leads.Submission {
	return leads.Submission{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "",
		Country: "Thailand",
		Message: "We are planning to retire within two years and want to explore Chiang Mai.",
	}
}

var publicMeta = RequestMeta{RemoteAddr: "10.0.0.5:41234", ForwardedFor: "203.0.113.7, 10.0.0.1", UserAgent: "Mozilla/5.0"}
