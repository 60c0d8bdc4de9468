package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Topic is one workflow the agents discuss.
type Topic struct {
	WorkflowID string
	Asset      string
	Title      string
	Platform   string
}

// Discussion plays a scripted agent conversation about new workflows to
// viewers. Only one discussion runs at a time; starting another cancels it.
type Discussion struct {
	hub     *Hub
	delay   time.Duration
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewDiscussion creates a Discussion that waits delay between messages and
// gives up after timeout.
func NewDiscussion(hub *Hub, delay, timeout time.Duration, logger *slog.Logger) *Discussion {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discussion{hub: hub, delay: delay, timeout: timeout, logger: logger}
}

// Start runs the discussion in the background, bound to parent. The
// returned function cancels it.
func (d *Discussion) Start(parent context.Context, topics []Topic) context.CancelFunc {
	d.mu.Lock()
	defer d.mu.Unlock()

	var ctx context.Context
	var cancel context.CancelFunc
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, d.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	if d.cancel != nil {
		d.cancel()
	}

	if d.stopped || len(topics) == 0 {
		d.cancel = nil
		cancel()
		return cancel
	}
	d.cancel = cancel

	// Add under mu; Stop marks stopped under mu before it waits.
	d.wg.Add(1)
	delay := d.delay
	go func() {
		defer d.wg.Done()
		defer cancel()
		d.run(ctx, topics, delay)
	}()
	return cancel
}

// SetTiming changes the pacing of discussions started afterwards.
func (d *Discussion) SetTiming(delay, timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
	d.timeout = timeout
}

// Wait blocks until every started discussion has finished.
func (d *Discussion) Wait() {
	d.wg.Wait()
}

// Stop cancels the running discussion and waits for it. Discussions started
// after Stop are not run.
func (d *Discussion) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Discussion) run(ctx context.Context, topics []Topic, delay time.Duration) {
	seq := 0
	for _, topic := range topics {
		for _, line := range script(topic) {
			if seq > 0 && !sleep(ctx, delay) {
				d.logger.Debug("discussion cancelled", "sent", seq, "error", ctx.Err())
				return
			}
			seq++
			d.hub.Publish(ctx, Message{
				Type:       TypeDiscussion,
				WorkflowID: topic.WorkflowID,
				Agent:      line.agent,
				Text:       line.text,
				Sequence:   seq,
			})
		}
	}
	d.logger.Debug("discussion finished", "messages", seq)
}

func sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type scriptLine struct {
	agent string
	text  string
}

func script(t Topic) []scriptLine {
	platform := t.Platform
	if platform == "" {
		platform = "our channels"
	}
	return []scriptLine{
		{"Strategist", fmt.Sprintf("New asset %s. I see a %q angle for %s.", t.Asset, t.Title, platform)},
		{"Creative", fmt.Sprintf("I'll shape %s to the brand's tone and signature phrases.", t.Asset)},
		{"Publisher", fmt.Sprintf("Queued for %s as soon as it's approved.", platform)},
	}
}
