package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/scanner"
	"github.com/leefowlercu/phoenix/internal/synthesis"
)

// LearnResult summarizes a learn pass.
type LearnResult struct {
	Roots    []string  `json:"roots"`
	Contexts int       `json:"contexts"`
	Assets   int       `json:"assets"`
	SyncedAt time.Time `json:"synced_at"`
}

// SyncResult is the outcome of a full sync.
type SyncResult struct {
	Learn     LearnResult      `json:"learn"`
	Synthesis synthesis.Result `json:"synthesis"`
}

// Learn rescans every discovery root and replaces each root's entry in the
// knowledge base.
func (o *Orchestrator) Learn(ctx context.Context) (LearnResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.learnLocked(ctx)
}

func (o *Orchestrator) learnLocked(ctx context.Context) (LearnResult, error) {
	roots := o.Roots()
	o.logger.Info("learning from discovery roots", "roots", len(roots))

	records := make(map[string]scanner.Record, len(roots))
	var contexts, assets int
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return LearnResult{}, err
		}
		rec := o.c.Scanner.Scan(ctx, root)
		records[root] = rec
		contexts += rec.ContextCount
		assets += rec.AssetCount
	}

	at, err := o.c.Store.SetContext(records)
	if err != nil {
		return LearnResult{}, fmt.Errorf("failed to persist learned context; %w", err)
	}

	o.logger.Info("learned from discovery roots", "roots", len(roots), "contexts", contexts, "assets", assets)
	o.publish(ctx, events.NewContextLearned(roots, contexts, assets))

	return LearnResult{Roots: roots, Contexts: contexts, Assets: assets, SyncedAt: at}, nil
}

// SyncDNA synthesizes a brand manifest from the learned context of every
// root and all inspiration URLs. A failed synthesis is reported in the
// result; the returned error is set only when persisting fails.
func (o *Orchestrator) SyncDNA(ctx context.Context) (synthesis.Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.syncDNALocked(ctx)
}

func (o *Orchestrator) syncDNALocked(ctx context.Context) (synthesis.Result, error) {
	urls := o.c.Store.InspirationURLs()
	externals := o.c.Fetcher.FetchAll(ctx, urls)

	kb := o.c.Store.Snapshot()
	roots := o.Roots()
	labels := make([]string, len(roots))
	records := make([]scanner.Record, len(roots))
	for i, root := range roots {
		if i > 0 {
			labels[i] = filepath.Base(root)
		}
		rec, ok := kb.ContextMap[root]
		if !ok {
			rec = scanner.EmptyRecord()
		}
		records[i] = rec
	}
	merged := scanner.Merge(o.c.Scanner.Limits(), labels, records)

	res := o.c.Synthesis.Synthesize(ctx, merged, externals)
	if res.Failed() {
		o.logger.Warn("brand synthesis failed", "error", res.Error)
		o.publish(ctx, events.NewManifestFailed(len(urls), res.Err))
		return res, nil
	}

	if err := o.c.Store.SetManifest(res.Manifest); err != nil {
		return res, fmt.Errorf("failed to persist manifest; %w", err)
	}

	o.logger.Info("brand manifest synthesized",
		"brand", res.Manifest.BrandIdentity.Name,
		"inspirations", len(urls))
	o.publish(ctx, events.NewManifestSynthesized(res.Manifest.BrandIdentity.Name, res.Manifest.ActiveFocus, len(urls)))
	return res, nil
}

// Sync runs Learn followed by SyncDNA as one operation.
func (o *Orchestrator) Sync(ctx context.Context) (SyncResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	learned, err := o.learnLocked(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	res, err := o.syncDNALocked(ctx)
	return SyncResult{Learn: learned, Synthesis: res}, err
}

// Manifest returns the last stored manifest.
func (o *Orchestrator) Manifest() (*synthesis.BrandManifest, bool) {
	m, ok := o.storedManifest()
	if !ok {
		return nil, false
	}
	return &m, true
}

// GenerateContent drafts content for task in the brand's voice.
func (o *Orchestrator) GenerateContent(ctx context.Context, task, taskType string) (*providers.Response, error) {
	if o.c.Content == nil {
		return nil, ErrContentUnavailable
	}
	if strings.TrimSpace(task) == "" {
		return nil, ErrEmptyTask
	}
	if strings.TrimSpace(taskType) == "" {
		taskType = providers.TaskDefault
	}
	return o.c.Content.Generate(ctx, task, taskType)
}

func (o *Orchestrator) storedManifest() (synthesis.BrandManifest, bool) {
	var m synthesis.BrandManifest
	ok, err := o.c.Store.Manifest(&m)
	if err != nil {
		o.logger.Warn("stored manifest unreadable", "error", err)
		return synthesis.BrandManifest{}, false
	}
	return m, ok
}
