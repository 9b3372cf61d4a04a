package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"supersoniq-insights/internal/actionable"
	"supersoniq-insights/internal/config"
	"supersoniq-insights/internal/logger"
	"supersoniq-insights/internal/metrics"
	"supersoniq-insights/internal/pipeline"
	"supersoniq-insights/internal/types"
)

// Runner executes a single run end to end.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (types.InsightResult, error)
}

// RunResult is what /runs returns and what Last reports.
type RunResult struct {
	RunID      string                 `json:"run_id"`
	StartedAt  time.Time              `json:"started_at"`
	DurationMs int64                  `json:"duration_ms"`
	Result     *types.InsightResult   `json:"result,omitempty"`
	Error      *actionable.ActionCard `json:"error,omitempty"`
}

// Processor admits one run at a time and keeps the outcome of the most
// recent one.
type Processor struct {
	runner  Runner
	catalog config.Catalog
	log     *logrus.Entry

	busy atomic.Bool

	mu   sync.RWMutex
	last *RunResult
}

func New(runner Runner, catalog config.Catalog, log *logrus.Entry) *Processor {
	return &Processor{runner: runner, catalog: catalog, log: log.WithField("component", "processor")}
}

// Process runs the pipeline unless another run is active, in which case it
// returns types.ErrRunInProgress without touching the last outcome. A run
// that starts clears the previous outcome first. On failure both the
// recorded outcome and the error are returned.
func (p *Processor) Process(ctx context.Context, in pipeline.Input) (*RunResult, error) {
	if !p.busy.CompareAndSwap(false, true) {
		metrics.RecordRejectedRun()
		p.log.Warn("run rejected: another run is in progress")
		return nil, types.ErrRunInProgress
	}
	defer p.busy.Store(false)

	p.mu.Lock()
	p.last = nil
	p.mu.Unlock()

	out := &RunResult{RunID: uuid.New().String(), StartedAt: time.Now().UTC()}
	log := logger.WithRun(p.log, out.RunID)
	log.WithFields(logrus.Fields{"file": in.Filename, "size": in.Size}).Info("run started")

	metrics.RecordRunStart()
	res, err := p.runner.Run(ctx, in)
	elapsed := time.Since(out.StartedAt)
	out.DurationMs = elapsed.Milliseconds()

	if err != nil {
		card := actionable.Generate(err, p.catalog)
		out.Error = &card
		metrics.RecordRunEnd("failure", elapsed)
		metrics.RecordError(string(card.Source), string(card.Kind))
		log.WithError(err).WithFields(logrus.Fields{
			"kind":        card.Kind,
			"source":      card.Source,
			"duration_ms": out.DurationMs,
		}).Warn("run failed")
	} else {
		out.Result = &res
		metrics.RecordRunEnd("success", elapsed)
		log.WithField("duration_ms", out.DurationMs).Info("run succeeded")
	}

	p.mu.Lock()
	p.last = out
	p.mu.Unlock()
	return out, err
}

// Busy reports whether a run is in progress.
func (p *Processor) Busy() bool {
	return p.busy.Load()
}

// Last returns the outcome of the most recent finished run.
func (p *Processor) Last() (*RunResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.last != nil
}

// Reset forgets the last outcome.
func (p *Processor) Reset() {
	p.mu.Lock()
	p.last = nil
	p.mu.Unlock()
	p.log.Info("last run cleared")
}
