// Package syncer runs the daily batch that scores every tracked
// executive and persists one snapshot per executive per day.
package syncer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/whoscooking/execmeter/internal/analysis"
	"github.com/whoscooking/execmeter/internal/database"
	"github.com/whoscooking/execmeter/internal/monitoring"
)

// politenessDelay spaces subjects out so a full batch never bursts
// the upstream API.
const politenessDelay = 500 * time.Millisecond

// Store is the persistence surface the orchestrator writes through.
type Store interface {
	ListExecutives() ([]database.Executive, error)
	InsertSnapshot(s *database.Snapshot) error
	UpdateExecutiveScore(executiveID string, score float64, avatarURL string, syncedAt time.Time) error
}

// MetricsSource produces the metrics record for one GitHub handle.
// ok=false means the profile could not be fetched.
type MetricsSource interface {
	Aggregate(ctx context.Context, username string) (*analysis.ExecutiveMetrics, bool)
}

// Result is one executive's outcome within a sync run. Score is nil
// when the sync failed; skipped executives report a zero score.
type Result struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
	Error string   `json:"error,omitempty"`
}

// Report enumerates every roster entry's outcome for one run.
type Report struct {
	Synced  int      `json:"synced"`
	Date    string   `json:"date"`
	Results []Result `json:"results"`
}

// Orchestrator walks the roster sequentially. Sequential processing
// is deliberate: it keeps the shared rate-limit state coherent and
// avoids concurrent writers on the same executive's score.
type Orchestrator struct {
	store  Store
	source MetricsSource
	logger *monitoring.Logger
	pacer  *rate.Limiter
	now    func() time.Time
}

// NewOrchestrator creates an orchestrator with the standard 500ms
// politeness pacing.
func NewOrchestrator(store Store, source MetricsSource, logger *monitoring.Logger) *Orchestrator {
	return NewOrchestratorWithClock(store, source, logger, time.Now, politenessDelay)
}

// NewOrchestratorWithClock creates an orchestrator with an injected
// clock and pacing interval. Used by tests.
func NewOrchestratorWithClock(store Store, source MetricsSource, logger *monitoring.Logger, now func() time.Time, delay time.Duration) *Orchestrator {
	pacer := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		pacer = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Orchestrator{
		store:  store,
		source: source,
		logger: logger,
		pacer:  pacer,
		now:    now,
	}
}

// SyncAll processes every tracked executive and returns a report with
// one entry per roster row. Failures inside one executive's sync are
// isolated; only a roster read failure aborts the run. The caller's
// context bounds the whole batch.
func (o *Orchestrator) SyncAll(ctx context.Context) (*Report, error) {
	start := o.now()

	executives, err := o.store.ListExecutives()
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	today := start.Format("2006-01-02")
	report := &Report{Date: today, Results: make([]Result, 0, len(executives))}

	var synced, skipped, failed int
	cancelled := false

	for _, exec := range executives {
		if cancelled {
			report.Results = append(report.Results, Result{Name: exec.Name, Error: "batch cancelled"})
			failed++
			continue
		}
		if err := o.pacer.Wait(ctx); err != nil {
			// Deadline fired mid-batch. Remaining subjects are never
			// written; tomorrow's run is independent. They still get
			// report entries so the caller sees the full roster.
			cancelled = true
			report.Results = append(report.Results, Result{Name: exec.Name, Error: "batch cancelled"})
			failed++
			continue
		}

		subjectStart := o.now()
		res := o.syncOne(ctx, exec, today)
		report.Results = append(report.Results, res)

		handle := ""
		if exec.GithubUsername != nil {
			handle = *exec.GithubUsername
		}
		o.logger.SyncSubjectLogger(exec.Name, handle, res.Score, res.Error, o.now().Sub(subjectStart))

		switch {
		case res.Error != "":
			failed++
			monitoring.RecordSubjectOutcome("failed")
		case handle == "":
			skipped++
			monitoring.RecordSubjectOutcome("skipped")
		default:
			synced++
			monitoring.RecordSubjectOutcome("synced")
		}
	}

	report.Synced = len(report.Results)

	duration := o.now().Sub(start)
	o.logger.SyncRunLogger(today, len(executives), synced, skipped, failed, duration)
	monitoring.RecordSyncRun(duration)

	return report, nil
}

// syncOne handles a single executive. Every failure path, including a
// panic, is converted into a per-subject result so the batch keeps
// going.
func (o *Orchestrator) syncOne(ctx context.Context, exec database.Executive, today string) (res Result) {
	res = Result{Name: exec.Name}

	defer func() {
		if r := recover(); r != nil {
			res.Score = nil
			res.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if exec.GithubUsername == nil || *exec.GithubUsername == "" {
		zero := 0.0
		res.Score = &zero
		return res
	}
	handle := *exec.GithubUsername

	metrics, ok := o.source.Aggregate(ctx, handle)
	if !ok {
		res.Error = "fetch failed"
		return res
	}

	score := analysis.Score(*metrics)
	total := float64(score.Total)

	snapshot := database.NewSnapshot(exec.ID, today, metrics, score)
	if err := o.store.InsertSnapshot(snapshot); err != nil {
		res.Error = err.Error()
		return res
	}

	avatarURL := fmt.Sprintf("https://github.com/%s.png", handle)
	if err := o.store.UpdateExecutiveScore(exec.ID, total, avatarURL, o.now()); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Score = &total
	return res
}
