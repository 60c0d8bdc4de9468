package events

import "time"

// JobStartedEvent is published when a daemon job (sync, propose, execute)
// begins.
type JobStartedEvent struct {
	Job       string
	StartedAt time.Time
}

// JobFinishedEvent describes a finished job run. Failed runs are published
// as JobFailed, every other run as JobCompleted.
type JobFinishedEvent struct {
	Job        string
	Status     string
	Error      string
	Counts     map[string]int
	Details    map[string]any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (e *JobFinishedEvent) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// NewJobStarted creates a JobStarted event.
func NewJobStarted(job string, startedAt time.Time) Event {
	return NewEvent(JobStarted, &JobStartedEvent{Job: job, StartedAt: startedAt})
}

// NewJobFinished creates a JobCompleted event, or a JobFailed event when the
// run failed.
func NewJobFinished(run JobFinishedEvent) Event {
	if run.Status == "failed" {
		return NewEvent(JobFailed, &run)
	}
	return NewEvent(JobCompleted, &run)
}
