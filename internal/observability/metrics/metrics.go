package metrics

import (
	"context"
	"time"

	"github.com/iglloo/lead-intake/internal/intake"
	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/prometheus/client_golang/prometheus"
)

// LeadMetrics exposes counters/histograms for the intake pipeline. It is an
// intake.Observer.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	stageFailures    *prometheus.CounterVec
	stageLatency     *prometheus.HistogramVec
	spamScore        prometheus.Histogram
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iglloo",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iglloo",
			Subsystem: "intake",
			Name:      "stage_failures_total",
			Help:      "Collaborator failures by pipeline stage",
		}, []string{"stage"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "iglloo",
			Subsystem: "intake",
			Name:      "stage_latency_seconds",
			Help:      "Latency of successful collaborator calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		spamScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "iglloo",
			Subsystem: "intake",
			Name:      "spam_score",
			Help:      "Heuristic spam score of accepted leads",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.stageFailures, m.stageLatency, m.spamScore)
	return m
}

func (m *LeadMetrics) StageFailed(ctx context.Context, stage intake.Stage, leadID string, err error) {
	if m == nil {
		return
	}
	m.stageFailures.WithLabelValues(string(stage)).Inc()
}

func (m *LeadMetrics) StageSucceeded(ctx context.Context, stage intake.Stage, leadID string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

func (m *LeadMetrics) SubmissionHandled(ctx context.Context, outcome intake.Outcome, lead *leads.Lead) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(string(outcome)).Inc()
	if lead != nil {
		m.spamScore.Observe(lead.SpamScore)
	}
}

var _ intake.Observer = (*LeadMetrics)(nil)
