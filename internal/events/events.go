// Package events provides an in-process pub/sub event bus for cross-component
// communication within the phoenix daemon.
package events

import (
	"time"
)

// EventType identifies the type of event being published.
type EventType string

const (
	// BucketAssetArrived is published when a new asset file lands in the bucket.
	BucketAssetArrived EventType = "bucket.asset_arrived"

	// BucketProcessed is published after a bucket processing pass.
	BucketProcessed EventType = "bucket.processed"

	// WorkflowProposed is published when a workflow is created from a bucket item.
	WorkflowProposed EventType = "workflow.proposed"

	// WorkflowStatusChanged is published on every workflow status transition.
	WorkflowStatusChanged EventType = "workflow.status_changed"

	// DiscussionMessage is published for each message of an agent discussion.
	DiscussionMessage EventType = "discussion.message"

	// FocusUpdated is published when the global focus changes.
	FocusUpdated EventType = "brand.focus_updated"

	// DiscoveryRootAdded is published when a discovery root is registered.
	DiscoveryRootAdded EventType = "brand.root_added"

	// ContextLearned is published after every discovery root has been rescanned.
	ContextLearned EventType = "context.learned"

	// ManifestSynthesized is published when a brand manifest is synthesized and stored.
	ManifestSynthesized EventType = "manifest.synthesized"

	// ManifestFailed is published when brand synthesis fails.
	ManifestFailed EventType = "manifest.failed"

	// PlatformAdded is published when a custom platform is registered.
	PlatformAdded EventType = "platform.added"

	// AgentIntegrated is published when an external agent is registered.
	AgentIntegrated EventType = "agent.integrated"

	// ConfigReloaded is published when configuration is successfully reloaded.
	ConfigReloaded EventType = "config.reloaded"

	// ConfigReloadFailed is published when configuration reload fails.
	ConfigReloadFailed EventType = "config.reload_failed"

	// JobStarted is published when a job starts.
	JobStarted EventType = "job.started"

	// JobCompleted is published when a job completes.
	JobCompleted EventType = "job.completed"

	// JobFailed is published when a job fails.
	JobFailed EventType = "job.failed"
)

// Event represents a published event in the system.
type Event struct {
	// Type identifies the event type.
	Type EventType

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Payload contains event-specific data.
	Payload any
}

// NewEvent creates a new event with the given type and payload.
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// EventHandler is a function that processes events.
type EventHandler func(event Event)

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
