package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iglloo/lead-intake/internal/intake"
	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counterValue(f *dto.MetricFamily, label, value string) float64 {
	if f == nil {
		return 0
	}
	for _, m := range f.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestLeadMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	ctx := context.Background()

	m.SubmissionHandled(ctx, intake.OutcomeAccepted, &leads.Lead{ID: "a", SpamScore: 0.05})
	m.SubmissionHandled(ctx, intake.OutcomeAccepted, &leads.Lead{ID: "b", SpamScore: 0.8})
	m.SubmissionHandled(ctx, intake.OutcomeSuppressed, nil)
	m.StageFailed(ctx, intake.StagePrimary, "a", errors.New("relay down"))
	m.StageSucceeded(ctx, intake.StageSecondary, "a", 120*time.Millisecond)

	families := gather(t, reg)
	submissions := families["iglloo_intake_submissions_total"]
	if got := counterValue(submissions, "outcome", "accepted"); got != 2 {
		t.Errorf("expected 2 accepted, got %v", got)
	}
	if got := counterValue(submissions, "outcome", "suppressed"); got != 1 {
		t.Errorf("expected 1 suppressed, got %v", got)
	}
	if got := counterValue(families["iglloo_intake_stage_failures_total"], "stage", "primary"); got != 1 {
		t.Errorf("expected 1 primary failure, got %v", got)
	}

	spam := families["iglloo_intake_spam_score"]
	if spam == nil || len(spam.GetMetric()) != 1 {
		t.Fatalf("expected spam score histogram, got %v", spam)
	}
	if got := spam.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("expected 2 spam samples, got %d", got)
	}
	if families["iglloo_intake_stage_latency_seconds"] == nil {
		t.Error("expected stage latency histogram")
	}
}

func TestLeadMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	defer func() { prometheus.DefaultRegisterer = prev }()

	m := NewLeadMetrics(nil)
	m.SubmissionHandled(context.Background(), intake.OutcomeRejected, nil)
	if got := counterValue(gather(t, reg)["iglloo_intake_submissions_total"], "outcome", "rejected"); got != 1 {
		t.Errorf("expected 1 rejected, got %v", got)
	}
}

func TestLeadMetricsNilSafe(t *testing.T) {
	var m *LeadMetrics
	ctx := context.Background()
	m.StageFailed(ctx, intake.StagePrimary, "id", errors.New("x"))
	m.StageSucceeded(ctx, intake.StagePrimary, "id", time.Second)
	m.SubmissionHandled(ctx, intake.OutcomeAccepted, nil)
}
