package events

// FocusEvent describes a focus change.
type FocusEvent struct {
	Previous string
	Focus    string
}

// RootEvent describes a discovery root registration.
type RootEvent struct {
	Path    string
	Primary bool
}

// ContextLearnedEvent summarizes a learn pass.
type ContextLearnedEvent struct {
	Roots    []string
	Contexts int
	Assets   int
}

// ManifestEvent describes a synthesis outcome.
type ManifestEvent struct {
	BrandName    string
	ActiveFocus  string
	Inspirations int
	Error        string
}

// PlatformEvent describes a platform registration.
type PlatformEvent struct {
	Name   string
	Type   string
	Status string
}

// AgentEvent describes an agent registration.
type AgentEvent struct {
	Name string
	URL  string
}

// NewFocusUpdated creates a FocusUpdated event.
func NewFocusUpdated(previous, focus string) Event {
	return NewEvent(FocusUpdated, &FocusEvent{Previous: previous, Focus: focus})
}

// NewDiscoveryRootAdded creates a DiscoveryRootAdded event.
func NewDiscoveryRootAdded(path string, primary bool) Event {
	return NewEvent(DiscoveryRootAdded, &RootEvent{Path: path, Primary: primary})
}

// NewContextLearned creates a ContextLearned event.
func NewContextLearned(roots []string, contexts, assets int) Event {
	return NewEvent(ContextLearned, &ContextLearnedEvent{Roots: roots, Contexts: contexts, Assets: assets})
}

// NewManifestSynthesized creates a ManifestSynthesized event.
func NewManifestSynthesized(brandName, activeFocus string, inspirations int) Event {
	return NewEvent(ManifestSynthesized, &ManifestEvent{
		BrandName:    brandName,
		ActiveFocus:  activeFocus,
		Inspirations: inspirations,
	})
}

// NewManifestFailed creates a ManifestFailed event.
func NewManifestFailed(inspirations int, err error) Event {
	return NewEvent(ManifestFailed, &ManifestEvent{
		Inspirations: inspirations,
		Error:        errorString(err),
	})
}

// NewPlatformAdded creates a PlatformAdded event.
func NewPlatformAdded(name, platformType, status string) Event {
	return NewEvent(PlatformAdded, &PlatformEvent{Name: name, Type: platformType, Status: status})
}

// NewAgentIntegrated creates an AgentIntegrated event.
func NewAgentIntegrated(name, url string) Event {
	return NewEvent(AgentIntegrated, &AgentEvent{Name: name, URL: url})
}
