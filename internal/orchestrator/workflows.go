package orchestrator

import (
	"context"

	"github.com/leefowlercu/phoenix/internal/broadcast"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

// ProcessBucket proposes one workflow per asset in the bucket and starts a
// discussion about them for connected viewers. Files are proposed again on
// every call until they are executed and archived.
func (o *Orchestrator) ProcessBucket(ctx context.Context, steer string) ([]workflow.Proposal, error) {
	o.mu.Lock()
	req := workflow.ProcessRequest{
		Steer: steer,
		Focus: o.Focus(),
		Brand: o.brand(),
	}
	proposals, err := o.c.Processor.Process(ctx, req)
	o.mu.Unlock()
	if err != nil {
		return proposals, err
	}

	o.logger.Info("bucket processed", "proposals", len(proposals), "steer", steer)

	if o.c.Discussion != nil && len(proposals) > 0 {
		o.c.Discussion.Start(o.baseCtx, topics(proposals))
	}
	return proposals, nil
}

// ListWorkflows returns every known workflow, pending and historical, in
// creation order.
func (o *Orchestrator) ListWorkflows() []workflow.Proposal {
	return o.c.Table.List()
}

// ExecuteWorkflow runs an approved workflow and returns its final record.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, id string) (workflow.Proposal, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.c.Executor.Execute(ctx, id)
}

// brand returns the planner view of the stored manifest.
func (o *Orchestrator) brand() workflow.Brand {
	m, ok := o.storedManifest()
	if !ok {
		return workflow.Brand{}
	}
	return workflow.Brand{
		Name:    m.BrandIdentity.Name,
		Mission: m.BrandIdentity.Mission,
		Tone:    m.BrandIdentity.Tone,
	}
}

func topics(proposals []workflow.Proposal) []broadcast.Topic {
	out := make([]broadcast.Topic, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, broadcast.Topic{
			WorkflowID: p.ID,
			Asset:      p.AssetName,
			Title:      p.Plan.Title,
			Platform:   p.Plan.Platform,
		})
	}
	return out
}
