package submission

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/kdimtricp/damagecheck/internal/backend"
	"github.com/kdimtricp/damagecheck/internal/metrics"
	"github.com/kdimtricp/damagecheck/internal/models"
)

var (
	ErrNoImages = errors.New("no images selected")
	ErrInFlight = errors.New("an assessment is already in progress")
)

const (
	SinkHistory = "history"
	SinkJournal = "journal"
)

type Analyzer interface {
	Analyze(ctx context.Context, images []backend.Upload) (*models.AssessmentResult, error)
}

type HistoryWriter interface {
	SaveHistory(ctx context.Context, token string, record models.HistoryRecord) error
}

// Journal is a local record of finished assessments.
type Journal interface {
	Record(ctx context.Context, result *models.AssessmentResult) error
}

type ResultStore interface {
	Set(result *models.AssessmentResult)
	Clear()
}

// SideEffect reports one best-effort write made after a successful analysis.
type SideEffect struct {
	Sink    string
	Skipped bool
	Err     error
}

// Outcome is the settled state of one submission. Result is the core channel,
// SideEffects the best-effort one; a side-effect failure never reaches the caller as an error.
type Outcome struct {
	Result      *models.AssessmentResult
	Stale       bool
	SideEffects []SideEffect
}

type Coordinator struct {
	analyzer Analyzer
	history  HistoryWriter
	journal  Journal
	store    ResultStore
	log      *zap.Logger

	mu         sync.Mutex
	generation uint64
	inFlight   bool
	lastErr    error
}

// NewCoordinator wires a coordinator for one session. journal may be nil.
func NewCoordinator(store ResultStore, analyzer Analyzer, history HistoryWriter, journal Journal, log *zap.Logger) *Coordinator {
	return &Coordinator{
		analyzer: analyzer,
		history:  history,
		journal:  journal,
		store:    store,
		log:      log.Named("submission"),
	}
}

func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastError is the failure of the latest primary call, nil after a success or reset.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit analyzes the images and, if no reset happened meanwhile, replaces the stored result.
// The history and journal writes run afterwards and only report into Outcome.SideEffects.
func (c *Coordinator) Submit(ctx context.Context, images []backend.Upload, token string) (*Outcome, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		metrics.IncreaseSubmissionsMetric(metrics.OutcomeRejected)
		return nil, ErrInFlight
	}
	c.inFlight = true
	c.lastErr = nil
	gen := c.generation
	c.mu.Unlock()

	log := c.log.With(zap.Uint64("generation", gen), zap.Int("images", len(images)))
	log.Debug("submitting assessment")

	result, err := c.analyzer.Analyze(ctx, images)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		log.Info("discarding completion of an abandoned submission")
		metrics.IncreaseSubmissionsMetric(metrics.OutcomeStale)
		return &Outcome{Stale: true}, nil
	}
	if err != nil {
		c.lastErr = err
		c.inFlight = false
		c.mu.Unlock()
		log.Warn("assessment failed", zap.Error(err))
		metrics.IncreaseSubmissionsMetric(metrics.OutcomeFailure)
		return nil, err
	}
	c.store.Set(result)
	c.mu.Unlock()

	metrics.IncreaseSubmissionsMetric(metrics.OutcomeSuccess)
	log.Info("assessment stored",
		zap.String("car_type", result.CarType),
		zap.String("severity", string(result.Severity)))

	outcome := &Outcome{
		Result:      result.Clone(),
		SideEffects: c.sideEffects(ctx, log, result, token),
	}

	c.mu.Lock()
	if gen == c.generation {
		c.inFlight = false
	}
	c.mu.Unlock()

	return outcome, nil
}

// Reset empties the store and abandons any pending submission.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.inFlight = false
	c.lastErr = nil
	c.store.Clear()
}

func (c *Coordinator) sideEffects(ctx context.Context, log *zap.Logger, result *models.AssessmentResult, token string) []SideEffect {
	effects := make([]SideEffect, 0, 2)

	history := SideEffect{Sink: SinkHistory}
	switch {
	case token == "" || c.history == nil:
		history.Skipped = true
	default:
		history.Err = c.history.SaveHistory(ctx, token, models.NewHistoryRecord(result))
	}
	effects = append(effects, history)

	if c.journal != nil {
		effects = append(effects, SideEffect{
			Sink: SinkJournal,
			Err:  c.journal.Record(ctx, result),
		})
	}

	for _, e := range effects {
		switch {
		case e.Skipped:
			metrics.IncreaseSideEffectsMetric(e.Sink, metrics.OutcomeSkipped)
		case e.Err != nil:
			log.Warn("best-effort write failed", zap.String("sink", e.Sink), zap.Error(e.Err))
			metrics.IncreaseSideEffectsMetric(e.Sink, metrics.OutcomeFailure)
		default:
			metrics.IncreaseSideEffectsMetric(e.Sink, metrics.OutcomeSuccess)
		}
	}
	return effects
}
