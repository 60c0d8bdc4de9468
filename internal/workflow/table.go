package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/metrics"
)

// Table is the live set of workflows in insertion order. Completed
// workflows are never removed.
type Table struct {
	mu      sync.RWMutex
	order   []string
	items   map[string]*Proposal
	journal Journal
	bus     events.Bus
	logger  *slog.Logger
	now     func() time.Time
}

// TableOption configures the Table.
type TableOption func(*Table)

// WithJournal persists every change to j.
func WithJournal(j Journal) TableOption {
	return func(t *Table) {
		t.journal = j
	}
}

// WithBus publishes workflow events to bus.
func WithBus(bus events.Bus) TableOption {
	return func(t *Table) {
		t.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TableOption {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TableOption {
	return func(t *Table) {
		t.now = now
	}
}

// NewTable creates an empty table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		items:   make(map[string]*Proposal),
		journal: MemoryJournal{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore loads journaled workflows. Workflows interrupted mid-execution
// are marked as errored.
func (t *Table) Restore(ctx context.Context) (int, error) {
	saved, err := t.journal.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to restore workflows; %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range saved {
		if p.Status == StatusExecuting {
			p.Status = StatusError
			p.Error = "interrupted by daemon restart"
			p.UpdatedAt = t.now()
			if err := t.journal.Save(ctx, p); err != nil {
				return 0, err
			}
		}
		if _, exists := t.items[p.ID]; !exists {
			t.order = append(t.order, p.ID)
		}
		t.items[p.ID] = &p
	}

	if len(saved) > 0 {
		t.logger.Info("workflows restored", "count", len(saved))
	}
	return len(saved), nil
}

// Put inserts a new workflow.
func (t *Table) Put(ctx context.Context, p Proposal) error {
	t.mu.Lock()
	if _, exists := t.items[p.ID]; exists {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWorkflowExists, p.ID)
	}
	if err := t.journal.Save(ctx, p); err != nil {
		t.mu.Unlock()
		return err
	}
	stored := p.Clone()
	t.items[p.ID] = &stored
	t.order = append(t.order, p.ID)
	t.mu.Unlock()

	t.publish(ctx, events.NewWorkflowProposed(p.ID, p.Plan.Title, p.Plan.Platform, string(p.Status)))
	return nil
}

// Get returns a copy of the workflow.
func (t *Table) Get(id string) (Proposal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.items[id]
	if !ok {
		return Proposal{}, false
	}
	return p.Clone(), true
}

// List returns copies of every workflow in insertion order.
func (t *Table) List() []Proposal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Proposal, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.items[id].Clone())
	}
	return out
}

// Len returns the number of workflows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Update applies fn to a copy of the workflow and stores the result. An
// error from fn leaves the workflow unchanged.
func (t *Table) Update(ctx context.Context, id string, fn func(*Proposal) error) (Proposal, error) {
	t.mu.Lock()
	current, ok := t.items[id]
	if !ok {
		t.mu.Unlock()
		return Proposal{}, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		t.mu.Unlock()
		return Proposal{}, err
	}
	next.ID = id
	next.UpdatedAt = t.now()

	if err := t.journal.Save(ctx, next); err != nil {
		t.mu.Unlock()
		return Proposal{}, err
	}
	previous := current.Status
	t.items[id] = &next
	t.mu.Unlock()

	if previous != next.Status {
		metrics.RecordWorkflowTransition(string(previous), string(next.Status))
		var err error
		if next.Error != "" {
			err = fmt.Errorf("%s", next.Error)
		}
		t.publish(ctx, events.NewWorkflowStatusChanged(id, string(previous), string(next.Status), err))
	}
	return next.Clone(), nil
}

// Fail marks the workflow as errored. The in-memory record changes even when
// the journal write fails, so a workflow never stays stuck in executing.
func (t *Table) Fail(ctx context.Context, id string, reason string) (Proposal, error) {
	t.mu.Lock()
	current, ok := t.items[id]
	if !ok {
		t.mu.Unlock()
		return Proposal{}, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}

	next := current.Clone()
	next.Status = StatusError
	next.Error = reason
	next.UpdatedAt = t.now()
	previous := current.Status
	t.items[id] = &next

	saveErr := t.journal.Save(ctx, next)
	t.mu.Unlock()

	if saveErr != nil {
		t.logger.Warn("failed to journal workflow error", "id", id, "error", saveErr)
	}
	if previous != next.Status {
		metrics.RecordWorkflowTransition(string(previous), string(next.Status))
		t.publish(ctx, events.NewWorkflowStatusChanged(id, string(previous), string(next.Status), fmt.Errorf("%s", reason)))
	}
	return next.Clone(), saveErr
}

// CountByStatus returns the number of workflows in each status.
func (t *Table) CountByStatus() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range t.items {
		counts[string(p.Status)]++
	}
	return counts
}

// CollectMetrics updates the workflow gauges.
func (t *Table) CollectMetrics(ctx context.Context) error {
	metrics.UpdateWorkflowMetrics(t.CountByStatus())
	return nil
}

func (t *Table) publish(ctx context.Context, event events.Event) {
	if t.bus == nil {
		return
	}
	if err := t.bus.Publish(ctx, event); err != nil {
		t.logger.Debug("failed to publish workflow event", "type", event.Type, "error", err)
	}
}
