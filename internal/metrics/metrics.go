// Package metrics provides Prometheus metrics for the phoenix daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "phoenix"
)

// Knowledge base metrics track the persisted brand state.
var (
	// DiscoveryRootsTotal is the number of registered discovery roots.
	DiscoveryRootsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "discovery_roots_total",
		Help:      "Number of registered discovery roots",
	})

	// InspirationsTotal is the number of registered inspiration URLs.
	InspirationsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inspirations_total",
		Help:      "Number of registered inspiration URLs",
	})

	// PlatformsTotal is the number of known publishing platforms.
	PlatformsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "platforms_total",
		Help:      "Number of known publishing platforms",
	})

	// AgentsTotal is the number of integrated external agents.
	AgentsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "agents_total",
		Help:      "Number of integrated external agents",
	})
)

// Workflow metrics track the workflow table.
var (
	// WorkflowsByStatus is the number of workflows in each status.
	WorkflowsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workflows",
		Help:      "Number of workflows by status",
	}, []string{"status"})

	// WorkflowTransitionsTotal is the total number of workflow status transitions.
	WorkflowTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_transitions_total",
		Help:      "Total number of workflow status transitions",
	}, []string{"from", "to"})

	// WorkflowExecutionDuration is a histogram of workflow execution duration in seconds.
	WorkflowExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "workflow_execution_duration_seconds",
		Help:      "Duration of workflow executions in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
	})
)

// Bucket metrics track media intake.
var (
	// BucketFilesProcessed is the total number of bucket files processed by kind.
	BucketFilesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bucket_files_processed_total",
		Help:      "Total number of bucket files processed",
	}, []string{"kind"})

	// BucketErrorsTotal is the total number of bucket files that failed to process.
	BucketErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bucket_errors_total",
		Help:      "Total number of bucket processing errors",
	})
)

// Scanner metrics track discovery scans.
var (
	// ScanFilesVisited is the total number of files visited during discovery scans.
	ScanFilesVisited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_files_visited_total",
		Help:      "Total number of files visited during discovery scans",
	})

	// ScanDuration is a histogram of discovery scan duration in seconds.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of discovery scans in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
	})
)

// Intel metrics track inspiration scraping.
var (
	// ScrapesTotal is the total number of scrape attempts by result.
	ScrapesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrapes_total",
		Help:      "Total number of inspiration scrapes",
	}, []string{"result"})
)

// Synthesis metrics track brand profile generation.
var (
	// SynthesisTotal is the total number of synthesis runs by outcome.
	SynthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "synthesis_total",
		Help:      "Total number of brand synthesis runs",
	}, []string{"outcome"})
)

// Provider metrics track language model API usage.
var (
	// ProviderRequestsTotal is the total number of provider API requests.
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of provider API requests",
	}, []string{"provider", "task"})

	// ProviderErrorsTotal is the total number of provider API errors.
	ProviderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Total number of provider API errors",
	}, []string{"provider", "task"})

	// ProviderTokensTotal is the total number of tokens consumed.
	ProviderTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_tokens_total",
		Help:      "Total number of tokens consumed",
	}, []string{"provider", "type"})

	// ProviderDuration is a histogram of provider request duration in seconds.
	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_duration_seconds",
		Help:      "Duration of provider API requests in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~102s
	}, []string{"provider", "task"})
)

// Broadcast metrics track live discussion delivery.
var (
	// BroadcastClients is the number of connected broadcast clients.
	BroadcastClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "broadcast_clients",
		Help:      "Number of connected broadcast clients",
	})

	// BroadcastMessagesTotal is the total number of broadcast messages by sink.
	BroadcastMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_messages_total",
		Help:      "Total number of broadcast messages delivered",
	}, []string{"sink"})

	// BroadcastDroppedTotal is the total number of messages dropped for slow clients.
	BroadcastDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_dropped_total",
		Help:      "Total number of broadcast messages dropped for slow clients",
	})
)

// Watcher metrics track bucket monitoring.
var (
	// WatcherEventsTotal is the total number of filesystem events.
	WatcherEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watcher_events_total",
		Help:      "Total number of filesystem events",
	}, []string{"type"})
)

// Event bus metrics.
var (
	// EventsPublished is the total number of events published by type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of events published on the event bus",
	}, []string{"event_type"})

	// EventBusDroppedEvents is the total number of events dropped for full subscriber buffers.
	EventBusDroppedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_bus_dropped_events_total",
		Help:      "Total number of events dropped because a subscriber buffer was full",
	}, []string{"event_type"})
)

// HTTP and MCP metrics track the daemon's request surfaces.
var (
	// HTTPRequestsTotal is the total number of HTTP requests by route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"route", "code"})

	// MCPRequestsTotal is the total number of MCP tool calls.
	MCPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mcp_requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool"})
)

// Daemon metrics track daemon health and uptime.
var (
	// DaemonInfo provides daemon version and build information.
	DaemonInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "daemon_info",
		Help:      "Daemon version and build information",
	}, []string{"version", "go_version"})

	// DaemonStartTime is the unix timestamp when the daemon started.
	DaemonStartTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "daemon_start_time_seconds",
		Help:      "Unix timestamp when the daemon started",
	})

	// ComponentStatus tracks the health status of daemon components.
	ComponentStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "component_status",
		Help:      "Health status of daemon components (1=healthy, 0=unhealthy)",
	}, []string{"component"})
)
