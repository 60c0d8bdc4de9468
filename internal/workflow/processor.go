package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/scanner"
)

// ProcessRequest carries the per-pass inputs of bucket processing.
type ProcessRequest struct {
	Steer string
	Focus string
	Brand Brand
}

// BucketProcessor turns bucket files into workflow proposals. Every pass
// proposes every qualifying file again; nothing is deduplicated.
type BucketProcessor struct {
	table        *Table
	bucketDir    string
	processedDir string
	planner      Planner
	bus          events.Bus
	logger       *slog.Logger
	now          func() time.Time
}

// ProcessorOption configures the BucketProcessor.
type ProcessorOption func(*BucketProcessor)

// WithPlanner plans proposals with p instead of the default plan.
func WithPlanner(p Planner) ProcessorOption {
	return func(bp *BucketProcessor) {
		bp.planner = p
	}
}

// WithProcessorBus publishes a summary event after each pass.
func WithProcessorBus(bus events.Bus) ProcessorOption {
	return func(bp *BucketProcessor) {
		bp.bus = bus
	}
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(bp *BucketProcessor) {
		bp.logger = logger
	}
}

// WithProcessorClock overrides the time source.
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(bp *BucketProcessor) {
		bp.now = now
	}
}

// NewBucketProcessor creates a processor for bucketDir that inserts into table.
func NewBucketProcessor(table *Table, bucketDir, processedDir string, opts ...ProcessorOption) *BucketProcessor {
	bp := &BucketProcessor{
		table:        table,
		bucketDir:    bucketDir,
		processedDir: processedDir,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(bp)
	}
	return bp
}

// BucketDir returns the bucket location.
func (bp *BucketProcessor) BucketDir() string {
	return bp.bucketDir
}

// Process proposes one workflow per top-level asset file in the bucket, in
// lexicographic order. A missing bucket yields no proposals.
func (bp *BucketProcessor) Process(ctx context.Context, req ProcessRequest) ([]Proposal, error) {
	entries, err := os.ReadDir(bp.bucketDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket; %w", err)
	}

	var proposals []Proposal
	var files, ids []string

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return proposals, err
		}
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		kind, ok := scanner.ClassifyAsset(name)
		if !ok || bp.inProcessed(filepath.Join(bp.bucketDir, name)) {
			continue
		}

		p := bp.propose(ctx, name, kind, req)
		if err := bp.table.Put(ctx, p); err != nil {
			metrics.RecordBucketFile(string(kind), err)
			return proposals, fmt.Errorf("failed to store workflow for %s; %w", name, err)
		}
		metrics.RecordBucketFile(string(kind), nil)

		proposals = append(proposals, p)
		files = append(files, name)
		ids = append(ids, p.ID)
	}

	bp.logger.Info("bucket processed", "bucket", bp.bucketDir, "proposals", len(proposals), "steered", req.Steer != "")
	if bp.bus != nil && len(proposals) > 0 {
		if err := bp.bus.Publish(ctx, events.NewBucketProcessed(files, ids)); err != nil {
			bp.logger.Debug("failed to publish bucket event", "error", err)
		}
	}
	return proposals, nil
}

func (bp *BucketProcessor) propose(ctx context.Context, name string, kind scanner.AssetKind, req ProcessRequest) Proposal {
	class := ClassPremium
	if kind == scanner.AssetImage {
		class = ClassFree
	}

	planReq := PlanRequest{AssetName: name, Kind: kind, Steer: req.Steer, Focus: req.Focus, Brand: req.Brand}
	plan := DefaultPlan(planReq)
	if bp.planner != nil {
		planned, err := bp.planner.Plan(ctx, planReq)
		if err != nil {
			bp.logger.Warn("workflow planning failed; using default plan", "asset", name, "error", err)
		} else {
			if planned.Platform == "" {
				planned.Platform = plan.Platform
			}
			plan = planned
		}
	}

	desc := fmt.Sprintf("Proposed %s workflow for %s", class, name)
	if req.Steer != "" {
		desc += fmt.Sprintf(" (steer: %s)", req.Steer)
	}

	now := bp.now()
	return Proposal{
		ID:             NewID(now),
		AssetName:      name,
		Classification: class,
		Plan:           plan,
		Description:    desc,
		Steer:          req.Steer,
		Status:         StatusAwaitingApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (bp *BucketProcessor) inProcessed(path string) bool {
	if bp.processedDir == "" {
		return false
	}
	rel, err := filepath.Rel(bp.processedDir, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}
