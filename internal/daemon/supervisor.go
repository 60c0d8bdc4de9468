package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultMinBackoff = time.Second
	defaultMaxBackoff = 30 * time.Second
)

// RestartPolicy determines whether a component is restarted on failure.
type RestartPolicy string

const (
	RestartNever     RestartPolicy = "never"
	RestartOnFailure RestartPolicy = "on_failure"
)

// Runnable is a background component whose runtime failures arrive on
// Errors. A stopped Runnable is not started again; the supervisor asks its
// factory for a fresh one.
type Runnable interface {
	Start(ctx context.Context) error
	Stop() error
	Errors() <-chan error
}

// Supervisor keeps background components such as the bucket watcher
// running, restarting them with exponential backoff.
type Supervisor struct {
	cancels       map[string]context.CancelFunc
	failed        map[string]string
	healthUpdater HealthUpdater
	logger        *slog.Logger
	minBackoff    time.Duration
	maxBackoff    time.Duration
	wg            sync.WaitGroup
	mu            sync.Mutex
}

// SupervisorOption configures Supervisor.
type SupervisorOption func(*Supervisor)

// WithSupervisorLogger sets the logger for supervision.
func WithSupervisorLogger(l *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// WithBackoff sets the min and max backoff durations.
func WithBackoff(min, max time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.minBackoff = min
		s.maxBackoff = max
	}
}

// NewSupervisor creates a new supervisor.
func NewSupervisor(healthUpdater HealthUpdater, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		cancels:       make(map[string]context.CancelFunc),
		failed:        make(map[string]string),
		healthUpdater: healthUpdater,
		logger:        slog.Default(),
		minBackoff:    defaultMinBackoff,
		maxBackoff:    defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supervise runs the component built by factory until ctx is canceled.
func (s *Supervisor) Supervise(ctx context.Context, name string, policy RestartPolicy, factory func() (Runnable, error)) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if prev, ok := s.cancels[name]; ok {
		prev()
	}
	s.cancels[name] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		backoff := s.minBackoff
		for {
			err := s.runOnce(runCtx, name, factory)
			if runCtx.Err() != nil {
				s.report(name, ComponentHealth{Status: ComponentStatusStopped})
				return
			}

			s.logger.Warn("component failed", "component", name, "error", err)
			s.report(name, ComponentHealth{Status: ComponentStatusFailed, Error: err.Error()})

			if policy == RestartNever {
				return
			}

			select {
			case <-runCtx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, s.maxBackoff)
		}
	}()
}

// runOnce starts one instance and blocks until it fails or ctx ends.
func (s *Supervisor) runOnce(ctx context.Context, name string, factory func() (Runnable, error)) error {
	r, err := factory()
	if err != nil {
		return fmt.Errorf("failed to create %s; %w", name, err)
	}
	if err := r.Start(ctx); err != nil {
		_ = r.Stop()
		return fmt.Errorf("failed to start %s; %w", name, err)
	}
	defer func() {
		if err := r.Stop(); err != nil {
			s.logger.Debug("component stop error", "component", name, "error", err)
		}
	}()

	now := time.Now()
	s.report(name, ComponentHealth{Status: ComponentStatusRunning, LastChecked: now, LastSuccess: now})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-r.Errors():
		return err
	}
}

func (s *Supervisor) report(name string, health ComponentHealth) {
	s.mu.Lock()
	if health.Status == ComponentStatusFailed {
		s.failed[name] = health.Error
	} else {
		delete(s.failed, name)
	}
	s.mu.Unlock()

	if s.healthUpdater != nil {
		s.healthUpdater.UpdateComponentHealth(map[string]ComponentHealth{name: health})
	}
}

// CancelAll stops every supervised component and waits for them to exit.
func (s *Supervisor) CancelAll() {
	s.mu.Lock()
	for name, cancel := range s.cancels {
		s.logger.Debug("canceling component", "component", name)
		cancel()
	}
	s.cancels = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	s.wg.Wait()
}

// SupervisedCount returns the number of currently supervised components.
func (s *Supervisor) SupervisedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// CollectMetrics reports an error while any supervised component is failed.
func (s *Supervisor) CollectMetrics(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, msg := range s.failed {
		return fmt.Errorf("%s failed; %s", name, msg)
	}
	return nil
}
