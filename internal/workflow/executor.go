package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leefowlercu/phoenix/internal/fsutil"
	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/platforms"
)

// Poster publishes workflow content to a platform.
type Poster interface {
	Post(ctx context.Context, platform string, content platforms.Content) platforms.PostResult
}

// Executor runs approved workflows.
type Executor struct {
	table        *Table
	runner       AgentRunner
	poster       Poster
	bucketDir    string
	processedDir string
	logger       *slog.Logger
}

// ExecutorOption configures the Executor.
type ExecutorOption func(*Executor)

// WithRunner sets the task runner.
func WithRunner(r AgentRunner) ExecutorOption {
	return func(e *Executor) {
		e.runner = r
	}
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor that archives assets from bucketDir into
// processedDir.
func NewExecutor(table *Table, poster Poster, bucketDir, processedDir string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		table:        table,
		poster:       poster,
		bucketDir:    bucketDir,
		processedDir: processedDir,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = SimulatedRunner{Logger: e.logger}
	}
	return e
}

// Execute runs every planned task, posts to the planned platform, marks the
// workflow completed, and archives its asset. Task and post failures are
// recorded on the workflow without failing it. Only pending or
// awaiting_approval workflows may execute.
func (e *Executor) Execute(ctx context.Context, id string) (Proposal, error) {
	start := time.Now()

	wf, err := e.table.Update(ctx, id, func(p *Proposal) error {
		if !p.Status.Executable() {
			return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, p.Status)
		}
		p.Status = StatusExecuting
		p.Error = ""
		return nil
	})
	if err != nil {
		return Proposal{}, err
	}

	e.logger.Info("executing workflow", "id", id, "asset", wf.AssetName, "tasks", len(wf.Plan.Tasks))

	results := make([]TaskResult, 0, len(wf.Plan.Tasks))
	for _, task := range wf.Plan.Tasks {
		results = append(results, e.runner.Run(ctx, wf, task[0], task[1]))
	}

	var post *platforms.PostResult
	if wf.Plan.Platform != "" && e.poster != nil {
		res := e.poster.Post(ctx, wf.Plan.Platform, platforms.Content{Title: wf.Plan.Title, Body: wf.Plan.Story})
		post = &res
	}

	wf, err = e.table.Update(ctx, id, func(p *Proposal) error {
		p.TaskResults = results
		p.PostResult = post
		p.Status = StatusCompleted
		return nil
	})
	if err != nil {
		failed, _ := e.table.Fail(ctx, id, fmt.Sprintf("failed to record completion: %v", err))
		e.logger.Error("workflow failed", "id", id, "error", err)
		return failed, fmt.Errorf("failed to complete workflow; %w", err)
	}

	archived, archiveErr := e.archive(wf.AssetName)
	if archived {
		wf, err = e.table.Update(ctx, id, func(p *Proposal) error {
			p.Archived = true
			return nil
		})
		if err != nil {
			return Proposal{}, err
		}
	}

	metrics.RecordWorkflowExecution(time.Since(start))
	e.logger.Info("workflow completed", "id", id, "archived", archived, "duration", time.Since(start))

	if archiveErr != nil {
		return wf, archiveErr
	}
	return wf, nil
}

// archive moves the asset into the processed directory. A missing asset is
// not an error.
func (e *Executor) archive(name string) (bool, error) {
	src := filepath.Join(e.bucketDir, name)
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		e.logger.Debug("asset already gone; skipping archive", "asset", name)
		return false, nil
	}

	if err := fsutil.MoveFile(src, filepath.Join(e.processedDir, name)); err != nil {
		return false, fmt.Errorf("failed to archive %s; %w", name, err)
	}
	return true, nil
}
