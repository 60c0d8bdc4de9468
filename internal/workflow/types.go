// Package workflow proposes, tracks, and executes content workflows for
// assets dropped into the bucket.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/phoenix/internal/platforms"
)

var (
	// ErrWorkflowNotFound is returned when an identifier is not in the table.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrInvalidTransition is returned when a workflow cannot move to the
	// requested status from its current one.
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrWorkflowExists is returned when inserting a duplicate identifier.
	ErrWorkflowExists = errors.New("workflow already exists")
)

// Status is a workflow lifecycle state.
type Status string

const (
	StatusPending          Status = "pending"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusExecuting        Status = "executing"
	StatusCompleted        Status = "completed"
	StatusError            Status = "error"
)

// Executable returns true if a workflow in this status may start executing.
func (s Status) Executable() bool {
	return s == StatusPending || s == StatusAwaitingApproval
}

// Classification tiers an asset. Images are free, video is premium.
type Classification string

const (
	ClassFree    Classification = "free"
	ClassPremium Classification = "premium"
)

// Per-task outcomes.
const (
	TaskSimulatedSuccess = "simulated_success"
	TaskSuccess          = "success"
)

// Plan is what a workflow will do with its asset. Each task is an
// [agent, description] pair.
type Plan struct {
	Title    string      `json:"title"`
	Story    string      `json:"story"`
	Tasks    [][2]string `json:"tasks"`
	Platform string      `json:"platform,omitempty"`
}

// TaskResult records one attempted task.
type TaskResult struct {
	Agent  string `json:"agent"`
	Task   string `json:"task"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Proposal is a workflow for one bucket asset.
type Proposal struct {
	ID             string                `json:"id"`
	AssetName      string                `json:"asset"`
	Classification Classification        `json:"classification"`
	Plan           Plan                  `json:"plan"`
	Description    string                `json:"description"`
	Steer          string                `json:"steer,omitempty"`
	Status         Status                `json:"status"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	TaskResults    []TaskResult          `json:"taskResults,omitempty"`
	PostResult     *platforms.PostResult `json:"postResult,omitempty"`
	Archived       bool                  `json:"archived"`
	Error          string                `json:"error,omitempty"`
}

// Clone returns a deep copy.
func (p Proposal) Clone() Proposal {
	c := p
	c.Plan.Tasks = append([][2]string(nil), p.Plan.Tasks...)
	c.TaskResults = append([]TaskResult(nil), p.TaskResults...)
	if p.PostResult != nil {
		pr := *p.PostResult
		c.PostResult = &pr
	}
	return c
}

// NewID returns a fresh workflow identifier.
func NewID(now time.Time) string {
	return fmt.Sprintf("wf_%d_%s", now.Unix(), uuid.NewString()[:8])
}
