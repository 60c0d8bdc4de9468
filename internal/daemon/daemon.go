// Package daemon runs the long-lived phoenix process: it owns the
// orchestrator, serves the brand API, MCP and metrics over HTTP, and manages
// the PID file and service-manager notifications.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DaemonState represents the lifecycle state of the daemon.
type DaemonState string

const (
	// DaemonStateStarting indicates the daemon is initializing.
	DaemonStateStarting DaemonState = "starting"

	// DaemonStateRunning indicates all components are healthy and serving.
	DaemonStateRunning DaemonState = "running"

	// DaemonStateDegraded indicates some non-critical components have failed.
	DaemonStateDegraded DaemonState = "degraded"

	// DaemonStateStopping indicates graceful shutdown is in progress.
	DaemonStateStopping DaemonState = "stopping"

	// DaemonStateStopped indicates the daemon has terminated.
	DaemonStateStopped DaemonState = "stopped"
)

// IsTerminal returns true if this state is a terminal state (no further transitions).
func (s DaemonState) IsTerminal() bool {
	return s == DaemonStateStopped
}

// CanTransitionTo returns true if transitioning to the target state is valid.
func (s DaemonState) CanTransitionTo(target DaemonState) bool {
	switch s {
	case DaemonStateStarting:
		return target == DaemonStateRunning || target == DaemonStateStopped
	case DaemonStateRunning:
		return target == DaemonStateDegraded || target == DaemonStateStopping
	case DaemonStateDegraded:
		return target == DaemonStateRunning || target == DaemonStateStopping
	case DaemonStateStopping:
		return target == DaemonStateStopped
	default:
		return false
	}
}

// DaemonConfig holds the configuration values for the daemon.
type DaemonConfig struct {
	// HTTPPort is the port for the HTTP server.
	HTTPPort int

	// HTTPBind is the address to bind the HTTP server.
	HTTPBind string

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration

	// PIDFile is the path to the PID file.
	PIDFile string
}

// DefaultDaemonConfig returns the default daemon configuration.
func DefaultDaemonConfig() DaemonConfig {
	return DaemonConfig{
		HTTPPort:        8000,
		HTTPBind:        "127.0.0.1",
		ShutdownTimeout: 30 * time.Second,
		PIDFile:         "~/.config/phoenix/daemon.pid",
	}
}

// Service is a component started before the HTTP server and stopped after
// it, in reverse order.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type namedService struct {
	name string
	svc  Service
}

// ConfigReloadFunc is a callback function invoked when config is reloaded.
type ConfigReloadFunc func() error

// Daemon is the main daemon process manager.
// It is safe for concurrent use.
type Daemon struct {
	mu              sync.RWMutex
	config          DaemonConfig
	state           DaemonState
	server          *Server
	health          *HealthManager
	pidFile         *PIDFile
	notifier        Notifier
	supervisor      *Supervisor
	services        []namedService
	background      []func(ctx context.Context)
	closers         []func() error
	reloadCallbacks []ConfigReloadFunc
	logger          *slog.Logger
}

// Option configures the Daemon.
type Option func(*Daemon)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Daemon) {
		d.logger = logger
	}
}

// WithNotifier replaces the systemd notifier.
func WithNotifier(n Notifier) Option {
	return func(d *Daemon) {
		d.notifier = n
	}
}

// NewDaemon creates a new Daemon instance with the given configuration.
func NewDaemon(cfg DaemonConfig, opts ...Option) *Daemon {
	d := &Daemon{
		config: cfg,
		state:  DaemonStateStopped,
		health: NewHealthManager(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = systemdNotifier{logger: d.logger}
	}

	d.server = NewServer(d.health, ServerConfig{Port: cfg.HTTPPort, Bind: cfg.HTTPBind})
	d.server.SetLogger(d.logger)
	d.pidFile = NewPIDFile(cfg.PIDFile)
	d.supervisor = NewSupervisor(d, WithSupervisorLogger(d.logger))
	return d
}

// State returns the current daemon state.
func (d *Daemon) State() DaemonState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Daemon) setState(state DaemonState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != state && !d.state.CanTransitionTo(state) && state != DaemonStateStarting {
		d.logger.Debug("unexpected daemon state transition", "from", d.state, "to", state)
	}
	d.state = state
}

// Server returns the HTTP server.
func (d *Daemon) Server() *Server {
	return d.server
}

// Health returns the current aggregate health status.
func (d *Daemon) Health() HealthStatus {
	return d.health.Status()
}

// HealthManager returns the health manager shared with the API's jobs.
func (d *Daemon) HealthManager() *HealthManager {
	return d.health
}

// Supervisor returns the background component supervisor.
func (d *Daemon) Supervisor() *Supervisor {
	return d.supervisor
}

// AddService registers a service started before the HTTP server.
func (d *Daemon) AddService(name string, svc Service) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.services = append(d.services, namedService{name: name, svc: svc})
}

// AddBackground registers fn to run once the daemon is serving. fn receives
// the daemon's run context; the supervisor is the usual caller.
func (d *Daemon) AddBackground(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.background = append(d.background, fn)
}

// AddCloser registers fn to run last during shutdown. Closers run in
// reverse registration order.
func (d *Daemon) AddCloser(fn func() error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closers = append(d.closers, fn)
}

// OnConfigReload registers a callback to be invoked when config is reloaded.
func (d *Daemon) OnConfigReload(fn ConfigReloadFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reloadCallbacks = append(d.reloadCallbacks, fn)
}

// UpdateComponentHealth updates health status for multiple components and
// moves the daemon between running and degraded.
func (d *Daemon) UpdateComponentHealth(statuses map[string]ComponentHealth) {
	d.health.UpdateComponentHealth(statuses)

	degraded := d.health.Status().Status == "degraded"
	switch state := d.State(); {
	case state == DaemonStateRunning && degraded:
		d.setState(DaemonStateDegraded)
	case state == DaemonStateDegraded && !degraded:
		d.setState(DaemonStateRunning)
	}
}

// TriggerConfigReload invokes all registered config reload callbacks.
// Every callback is attempted; failures are logged and counted.
func (d *Daemon) TriggerConfigReload() error {
	d.logger.Info("config reload triggered")

	d.mu.RLock()
	callbacks := make([]ConfigReloadFunc, len(d.reloadCallbacks))
	copy(callbacks, d.reloadCallbacks)
	d.mu.RUnlock()

	var failedCount int
	for i, fn := range callbacks {
		if err := fn(); err != nil {
			d.logger.Error("config reload callback failed",
				"callback_index", i,
				"error", err)
			failedCount++
		}
	}

	if failedCount > 0 {
		return fmt.Errorf("%d of %d reload callbacks failed", failedCount, len(callbacks))
	}
	return nil
}

// Start runs the daemon and blocks until ctx is canceled or the HTTP server
// fails. It claims the PID file, starts services, binds the listener,
// reports READY and then serves.
func (d *Daemon) Start(ctx context.Context) error {
	d.setState(DaemonStateStarting)

	if err := d.pidFile.CheckAndClaim(); err != nil {
		d.setState(DaemonStateStopped)
		return fmt.Errorf("failed to claim PID file; %w", err)
	}
	defer func() { _ = d.pidFile.Remove() }()

	d.mu.RLock()
	services := append([]namedService(nil), d.services...)
	background := append([]func(context.Context)(nil), d.background...)
	d.mu.RUnlock()

	for i, s := range services {
		if err := s.svc.Start(ctx); err != nil {
			d.stopServices(services[:i])
			d.runClosers()
			d.setState(DaemonStateStopped)
			return fmt.Errorf("failed to start %s; %w", s.name, err)
		}
		now := time.Now()
		d.health.UpdateComponent(s.name, ComponentHealth{Status: ComponentStatusRunning, LastChecked: now, LastSuccess: now})
	}

	if err := d.server.Listen(); err != nil {
		d.stopServices(services)
		d.runClosers()
		d.setState(DaemonStateStopped)
		return err
	}

	for _, fn := range background {
		fn(ctx)
	}

	d.setState(DaemonStateRunning)
	if err := d.notifier.Notify(notifyReady); err != nil {
		d.logger.Warn("failed to notify service manager", "error", err)
	}
	d.logger.Info("daemon started",
		"state", d.State(),
		"addr", d.server.Addr(),
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- d.server.Serve(ctx)
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		d.logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			d.logger.Error("http server error", "error", err)
			runErr = err
		}
	}

	return errors.Join(runErr, d.Stop())
}

// Stop performs graceful shutdown of the daemon. On a daemon that never
// started it only runs the closers.
func (d *Daemon) Stop() error {
	if d.State() == DaemonStateStopped {
		d.runClosers()
		return nil
	}
	d.setState(DaemonStateStopping)
	d.logger.Info("stopping daemon")
	if err := d.notifier.Notify(notifyStopping); err != nil {
		d.logger.Debug("failed to notify service manager", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Error("failed to shutdown http server", "error", err)
		errs = append(errs, err)
	}

	d.supervisor.CancelAll()

	d.mu.RLock()
	services := append([]namedService(nil), d.services...)
	d.mu.RUnlock()
	d.stopServicesCtx(shutdownCtx, services)
	d.runClosers()

	d.setState(DaemonStateStopped)
	d.logger.Info("daemon stopped")
	return errors.Join(errs...)
}

func (d *Daemon) stopServices(services []namedService) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
	defer cancel()
	d.stopServicesCtx(ctx, services)
}

func (d *Daemon) stopServicesCtx(ctx context.Context, services []namedService) {
	for i := len(services) - 1; i >= 0; i-- {
		s := services[i]
		if err := s.svc.Stop(ctx); err != nil {
			d.logger.Warn("service stop failed", "service", s.name, "error", err)
		}
		d.health.UpdateComponent(s.name, ComponentHealth{Status: ComponentStatusStopped})
	}
}

func (d *Daemon) runClosers() {
	d.mu.Lock()
	closers := d.closers
	d.closers = nil
	d.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			d.logger.Warn("close failed", "error", err)
		}
	}
}
