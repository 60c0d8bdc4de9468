package mcp

import (
	"github.com/leefowlercu/phoenix/internal/events"
)

// startEventListener subscribes to brand events and turns them into
// resource update notifications.
func (s *Server) startEventListener() {
	if s.bus == nil {
		s.logger.Debug("MCP event listener not started; no event bus")
		return
	}

	unsubs := []func(){
		s.bus.Subscribe(events.ManifestSynthesized, s.handleManifestEvent),
		s.bus.Subscribe(events.FocusUpdated, s.handleStatusEvent),
		s.bus.Subscribe(events.DiscoveryRootAdded, s.handleStatusEvent),
		s.bus.Subscribe(events.PlatformAdded, s.handleStatusEvent),
		s.bus.Subscribe(events.AgentIntegrated, s.handleStatusEvent),
		s.bus.Subscribe(events.WorkflowProposed, s.handleWorkflowEvent),
		s.bus.Subscribe(events.WorkflowStatusChanged, s.handleWorkflowEvent),
	}
	s.unsubscribe = func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}

	s.logger.Info("MCP event listener started")
}

func (s *Server) stopEventListener() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.logger.Debug("MCP event listener stopped")
}

func (s *Server) handleManifestEvent(event events.Event) {
	s.logger.Debug("MCP sending manifest update notification", "type", event.Type)
	s.NotifyResourceChanged(ResourceURIManifest)
	s.NotifyResourceChanged(ResourceURIStatus)
}

func (s *Server) handleStatusEvent(event events.Event) {
	s.NotifyResourceChanged(ResourceURIStatus)
}

func (s *Server) handleWorkflowEvent(event events.Event) {
	s.NotifyResourceChanged(ResourceURIWorkflows)
}
