package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/leefowlercu/phoenix/internal/events"
)

// Job names reported in /readyz and job events.
const (
	JobSync    = "sync"
	JobPropose = "propose"
	JobExecute = "execute"
)

// RunStatus describes the result of a job run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)

// RunResult captures the outcome of a job run.
type RunResult struct {
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     map[string]int
	Error      string
	Details    map[string]any
}

// JobRunner records request-triggered operations as jobs: it publishes
// start, completion and failure events and keeps the last run of each job
// in the health manager.
type JobRunner struct {
	bus    events.Bus
	health *HealthManager
	logger *slog.Logger
}

// NewJobRunner creates a new JobRunner. bus may be nil.
func NewJobRunner(bus events.Bus, health *HealthManager, logger *slog.Logger) *JobRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRunner{bus: bus, health: health, logger: logger}
}

// Run executes fn as the named job.
func (jr *JobRunner) Run(ctx context.Context, name string, fn func(context.Context) RunResult) RunResult {
	started := time.Now()
	jr.health.UpdateJob(name, JobHealth{Status: JobStatusRunning, StartedAt: started})
	jr.publish(ctx, events.NewJobStarted(name, started))

	result := fn(ctx)
	if result.StartedAt.IsZero() {
		result.StartedAt = started
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}

	jr.health.UpdateJob(name, JobHealth{
		Status:     JobStatus(result.Status),
		Error:      result.Error,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Counts:     result.Counts,
		Details:    result.Details,
	})

	run := events.JobFinishedEvent{
		Job:        name,
		Status:     string(result.Status),
		Error:      result.Error,
		Counts:     result.Counts,
		Details:    result.Details,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
	jr.publish(ctx, events.NewJobFinished(run))

	jr.logger.Debug("job finished",
		"job", name,
		"status", result.Status,
		"duration", result.FinishedAt.Sub(result.StartedAt))
	return result
}

func (jr *JobRunner) publish(ctx context.Context, event events.Event) {
	if jr.bus == nil {
		return
	}
	if err := jr.bus.Publish(ctx, event); err != nil {
		jr.logger.Debug("job event not published", "type", event.Type, "error", err)
	}
}
