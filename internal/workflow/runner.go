package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leefowlercu/phoenix/internal/providers"
)

// AgentRunner attempts one planned task. Failures are reported in the
// result; a runner never stops a workflow.
type AgentRunner interface {
	Run(ctx context.Context, p Proposal, agent, task string) TaskResult
}

// SimulatedRunner records every task as a simulated success.
type SimulatedRunner struct {
	Logger *slog.Logger
}

// Run logs the task and reports simulated success.
func (r SimulatedRunner) Run(ctx context.Context, p Proposal, agent, task string) TaskResult {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("agent executing task", "workflow", p.ID, "agent", agent, "task", task)
	return TaskResult{Agent: agent, Task: task, Status: TaskSimulatedSuccess}
}

// ContentGenerator drafts content for a task type.
type ContentGenerator interface {
	Generate(ctx context.Context, task, taskType string) (*providers.Response, error)
}

// ContentRunner drafts each task's output with the language model.
type ContentRunner struct {
	generator ContentGenerator
	logger    *slog.Logger
}

// NewContentRunner creates a ContentRunner.
func NewContentRunner(generator ContentGenerator, logger *slog.Logger) *ContentRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentRunner{generator: generator, logger: logger}
}

// Run drafts the task. A generation failure falls back to a simulated
// success carrying the error.
func (r *ContentRunner) Run(ctx context.Context, p Proposal, agent, task string) TaskResult {
	prompt := fmt.Sprintf("Workflow: %s\nAsset: %s\nStory: %s\n\nAs the %s agent, complete this task: %s",
		p.Plan.Title, p.AssetName, p.Plan.Story, agent, task)

	resp, err := r.generator.Generate(ctx, prompt, taskTypeFor(agent))
	if err != nil {
		r.logger.Warn("agent task failed; recording simulated success", "workflow", p.ID, "agent", agent, "error", err)
		return TaskResult{Agent: agent, Task: task, Status: TaskSimulatedSuccess, Error: err.Error()}
	}
	return TaskResult{Agent: agent, Task: task, Status: TaskSuccess, Output: resp.Content}
}

func taskTypeFor(agent string) string {
	switch strings.ToLower(agent) {
	case "strategist":
		return providers.TaskStrategy
	case "creative":
		return providers.TaskCreative
	case "analyst":
		return providers.TaskAnalytical
	default:
		return providers.TaskDefault
	}
}
