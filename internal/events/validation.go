package events

import (
	"fmt"
	"reflect"
)

var payloadTypes = map[EventType]reflect.Type{
	BucketAssetArrived:    reflect.TypeOf(&BucketFileEvent{}),
	BucketProcessed:       reflect.TypeOf(&BucketProcessedEvent{}),
	WorkflowProposed:      reflect.TypeOf(&WorkflowEvent{}),
	WorkflowStatusChanged: reflect.TypeOf(&WorkflowEvent{}),
	DiscussionMessage:     reflect.TypeOf(&DiscussionMessageEvent{}),
	FocusUpdated:          reflect.TypeOf(&FocusEvent{}),
	DiscoveryRootAdded:    reflect.TypeOf(&RootEvent{}),
	ContextLearned:        reflect.TypeOf(&ContextLearnedEvent{}),
	ManifestSynthesized:   reflect.TypeOf(&ManifestEvent{}),
	ManifestFailed:        reflect.TypeOf(&ManifestEvent{}),
	PlatformAdded:         reflect.TypeOf(&PlatformEvent{}),
	AgentIntegrated:       reflect.TypeOf(&AgentEvent{}),
	ConfigReloaded:        reflect.TypeOf(&ConfigReloadEvent{}),
	ConfigReloadFailed:    reflect.TypeOf(&ConfigReloadEvent{}),
	JobStarted:            reflect.TypeOf(&JobStartedEvent{}),
	JobCompleted:          reflect.TypeOf(&JobFinishedEvent{}),
	JobFailed:             reflect.TypeOf(&JobFinishedEvent{}),
}

// PayloadType returns the expected payload type for an event type.
func PayloadType(eventType EventType) (reflect.Type, bool) {
	t, ok := payloadTypes[eventType]
	return t, ok
}

// ValidatePayload verifies that an event payload matches the expected type.
func ValidatePayload(event Event) error {
	if event.Payload == nil {
		return nil
	}

	expected, ok := payloadTypes[event.Type]
	if !ok {
		return fmt.Errorf("no payload mapping for event type %q", event.Type)
	}

	if reflect.TypeOf(event.Payload) != expected {
		return fmt.Errorf("event %q payload type mismatch: got %T, expected %s", event.Type, event.Payload, expected)
	}

	return nil
}
