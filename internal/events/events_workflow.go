package events

// WorkflowEvent describes a workflow lifecycle change.
type WorkflowEvent struct {
	ID       string
	Title    string
	Platform string
	Status   string
	Previous string
	Error    string
}

// DiscussionMessageEvent carries one message of an agent discussion.
type DiscussionMessageEvent struct {
	WorkflowID string
	Agent      string
	Message    string
	Sequence   int
}

// NewWorkflowProposed creates a WorkflowProposed event.
func NewWorkflowProposed(id, title, platform, status string) Event {
	return NewEvent(WorkflowProposed, &WorkflowEvent{
		ID:       id,
		Title:    title,
		Platform: platform,
		Status:   status,
	})
}

// NewWorkflowStatusChanged creates a WorkflowStatusChanged event.
func NewWorkflowStatusChanged(id, previous, status string, err error) Event {
	return NewEvent(WorkflowStatusChanged, &WorkflowEvent{
		ID:       id,
		Status:   status,
		Previous: previous,
		Error:    errorString(err),
	})
}

// NewDiscussionMessage creates a DiscussionMessage event.
func NewDiscussionMessage(workflowID, agent, message string, sequence int) Event {
	return NewEvent(DiscussionMessage, &DiscussionMessageEvent{
		WorkflowID: workflowID,
		Agent:      agent,
		Message:    message,
		Sequence:   sequence,
	})
}
