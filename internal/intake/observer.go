package intake

import (
	"context"
	"time"

	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// Stage names one step of the intake pipeline.
type Stage string

const (
	StageGeolocation Stage = "geolocation"
	StageCommentary  Stage = "commentary"
	StagePrimary     Stage = "primary"
	StageSecondary   Stage = "secondary"
	StagePersistence Stage = "persistence"
)

// Outcome is how a submission left the pipeline.
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeRejected   Outcome = "rejected"
)

// Observer receives pipeline events. Implementations must be safe for
// concurrent use; stages may run in parallel.
type Observer interface {
	StageFailed(ctx context.Context, stage Stage, leadID string, err error)
	StageSucceeded(ctx context.Context, stage Stage, leadID string, elapsed time.Duration)
	SubmissionHandled(ctx context.Context, outcome Outcome, lead *leads.Lead)
}

// LogObserver writes pipeline events to a structured logger.
type LogObserver struct {
	logger *logging.Logger
}

// NewLogObserver returns an observer that logs through logger.
func NewLogObserver(logger *logging.Logger) *LogObserver {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) StageFailed(ctx context.Context, stage Stage, leadID string, err error) {
	o.logger.Error("intake stage failed", "stage", string(stage), "lead_id", leadID, "error", err)
}

func (o *LogObserver) StageSucceeded(ctx context.Context, stage Stage, leadID string, elapsed time.Duration) {
	o.logger.Debug("intake stage succeeded", "stage", string(stage), "lead_id", leadID, "duration_ms", elapsed.Milliseconds())
}

func (o *LogObserver) SubmissionHandled(ctx context.Context, outcome Outcome, lead *leads.Lead) {
	if lead == nil {
		o.logger.Info("submission handled", "outcome", string(outcome))
		return
	}
	o.logger.Info("submission handled",
		"outcome", string(outcome),
		"lead_id", lead.ID,
		"spam_score", lead.SpamScore,
		"spam_signals", lead.SpamSignals,
	)
}

// MultiObserver fans events out to every member in order. A nil or empty
// MultiObserver discards events.
type MultiObserver []Observer

func (m MultiObserver) StageFailed(ctx context.Context, stage Stage, leadID string, err error) {
	for _, o := range m {
		if o != nil {
			o.StageFailed(ctx, stage, leadID, err)
		}
	}
}

func (m MultiObserver) StageSucceeded(ctx context.Context, stage Stage, leadID string, elapsed time.Duration) {
	for _, o := range m {
		if o != nil {
			o.StageSucceeded(ctx, stage, leadID, elapsed)
		}
	}
}

func (m MultiObserver) SubmissionHandled(ctx context.Context, outcome Outcome, lead *leads.Lead) {
	for _, o := range m {
		if o != nil {
			o.SubmissionHandled(ctx, outcome, lead)
		}
	}
}

var (
	_ Observer = (*LogObserver)(nil)
	_ Observer = MultiObserver(nil)
)
