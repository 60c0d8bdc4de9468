package daemon

import (
	"sync"
	"time"
)

// ComponentStatus represents the health state of a component.
type ComponentStatus string

const (
	// ComponentStatusRunning indicates the component is operating normally.
	ComponentStatusRunning ComponentStatus = "running"

	// ComponentStatusFailed indicates the component has encountered an error.
	ComponentStatusFailed ComponentStatus = "failed"

	// ComponentStatusDegraded indicates the component is running with reduced capabilities.
	ComponentStatusDegraded ComponentStatus = "degraded"

	// ComponentStatusStopped indicates the component has been intentionally stopped.
	ComponentStatusStopped ComponentStatus = "stopped"
)

// IsHealthy returns true if the component status indicates healthy operation.
func (s ComponentStatus) IsHealthy() bool {
	return s == ComponentStatusRunning
}

// JobStatus is the state of the last run of a job.
type JobStatus string

const (
	JobStatusRunning JobStatus = "running"
	JobStatusSuccess JobStatus = "success"
	JobStatusPartial JobStatus = "partial"
	JobStatusFailed  JobStatus = "failed"
)

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status ComponentStatus `json:"status"`

	// Error is set when Status is "failed".
	Error string `json:"error,omitempty"`

	LastChecked time.Time `json:"last_checked"`
	Since       time.Time `json:"since,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`

	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the component health indicates healthy operation.
func (h ComponentHealth) IsHealthy() bool {
	return h.Status.IsHealthy()
}

// JobHealth represents the last run of a job such as a sync or a bucket
// proposal pass.
type JobHealth struct {
	Status     JobStatus      `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at,omitempty"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// HealthStatus represents the aggregate health of the daemon.
// This is the response format for the /readyz endpoint.
type HealthStatus struct {
	// Status is "healthy" or "degraded".
	Status string `json:"status"`

	// Ready is true for both healthy and degraded daemons.
	Ready bool `json:"ready"`

	Uptime     time.Duration              `json:"uptime"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
	Jobs       map[string]JobHealth       `json:"jobs,omitempty"`
}

// HealthUpdater receives component health changes.
type HealthUpdater interface {
	UpdateComponentHealth(statuses map[string]ComponentHealth)
}

// HealthManager aggregates health status from multiple components.
// It is safe for concurrent use.
type HealthManager struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	jobs       map[string]JobHealth
	startTime  time.Time
}

// NewHealthManager creates a new HealthManager instance.
func NewHealthManager() *HealthManager {
	return &HealthManager{
		components: make(map[string]ComponentHealth),
		jobs:       make(map[string]JobHealth),
		startTime:  time.Now(),
	}
}

// UpdateComponent updates the health status for a named component. Since is
// carried over while the status is unchanged.
func (m *HealthManager) UpdateComponent(name string, health ComponentHealth) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if health.LastChecked.IsZero() {
		health.LastChecked = time.Now()
	}
	if prev, ok := m.components[name]; ok && prev.Status == health.Status && health.Since.IsZero() {
		health.Since = prev.Since
	}
	if health.Since.IsZero() {
		health.Since = health.LastChecked
	}
	m.components[name] = health
}

// UpdateComponentHealth implements HealthUpdater.
func (m *HealthManager) UpdateComponentHealth(statuses map[string]ComponentHealth) {
	for name, health := range statuses {
		m.UpdateComponent(name, health)
	}
}

// UpdateJob updates the status for a named job.
func (m *HealthManager) UpdateJob(name string, health JobHealth) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[name] = health
}

// RemoveComponent removes a component from health tracking.
func (m *HealthManager) RemoveComponent(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.components, name)
}

// Status returns the aggregate health status of all components and jobs.
func (m *HealthManager) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := HealthStatus{
		Status:     "healthy",
		Ready:      true,
		Uptime:     time.Since(m.startTime),
		Components: make(map[string]ComponentHealth, len(m.components)),
		Jobs:       make(map[string]JobHealth, len(m.jobs)),
	}

	for name, health := range m.components {
		status.Components[name] = health
		if !health.IsHealthy() && health.Status != ComponentStatusStopped {
			status.Status = "degraded"
		}
	}
	for name, health := range m.jobs {
		status.Jobs[name] = health
		if health.Status == JobStatusFailed || health.Status == JobStatusPartial {
			status.Status = "degraded"
		}
	}

	return status
}
