package config

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/leefowlercu/phoenix/internal/events"
)

// eventBusMu protects eventBus
var eventBusMu sync.RWMutex

// eventBus is the event bus instance for publishing config events.
// Set via SetEventBus().
var eventBus events.Bus

// SetEventBus sets the event bus instance for publishing config reload events.
// Must be called before config reload events will be published.
func SetEventBus(bus events.Bus) {
	eventBusMu.Lock()
	defer eventBusMu.Unlock()
	eventBus = bus
}

// ReloadableSections lists the config sections that can be hot-reloaded.
// Changes to other sections require a daemon restart.
var ReloadableSections = []string{"log_level", "llm", "broadcast"}

// detectChangedSections compares old and new configs and returns a list of changed sections.
func detectChangedSections(old, new *Config) []string {
	var changed []string

	if old.LogLevel != new.LogLevel {
		changed = append(changed, "log_level")
	}
	if old.LogFile != new.LogFile || !reflect.DeepEqual(old.LogRotation, new.LogRotation) {
		changed = append(changed, "log_file")
	}

	sections := []struct {
		name     string
		old, new any
	}{
		{"workspace", old.Workspace, new.Workspace},
		{"focus", old.Focus, new.Focus},
		{"scanner", old.Scanner, new.Scanner},
		{"intel", old.Intel, new.Intel},
		{"llm", old.LLM, new.LLM},
		{"bucket", old.Bucket, new.Bucket},
		{"workflows", old.Workflows, new.Workflows},
		{"platforms", old.Platforms, new.Platforms},
		{"broadcast", old.Broadcast, new.Broadcast},
		{"agents", old.Agents, new.Agents},
		{"daemon", old.Daemon, new.Daemon},
	}
	for _, s := range sections {
		if !reflect.DeepEqual(s.old, s.new) {
			changed = append(changed, s.name)
		}
	}

	return changed
}

// isReloadable checks if all changed sections are hot-reloadable.
func isReloadable(changedSections []string) bool {
	reloadableSet := make(map[string]bool)
	for _, s := range ReloadableSections {
		reloadableSet[s] = true
	}

	for _, section := range changedSections {
		if !reloadableSet[section] {
			return false
		}
	}

	return true
}

// publishConfigReloaded publishes a config.reloaded event.
func publishConfigReloaded(old, new *Config) {
	eventBusMu.RLock()
	bus := eventBus
	eventBusMu.RUnlock()

	if bus == nil {
		return
	}

	changedSections := detectChangedSections(old, new)
	reloadable := isReloadable(changedSections)

	if !reloadable {
		slog.Warn("config reload includes non-reloadable sections; some changes require daemon restart",
			"changed_sections", changedSections)
	}

	event := events.NewConfigReloaded(changedSections, reloadable)
	if err := bus.Publish(context.Background(), event); err != nil {
		slog.Error("failed to publish config reload event", "error", err)
	}
}

// publishConfigReloadFailed publishes a config.reload_failed event.
func publishConfigReloadFailed(err error) {
	eventBusMu.RLock()
	bus := eventBus
	eventBusMu.RUnlock()

	if bus == nil {
		return
	}

	event := events.NewConfigReloadFailed(err)
	if pubErr := bus.Publish(context.Background(), event); pubErr != nil {
		slog.Error("failed to publish config reload failed event", "error", pubErr)
	}
}
