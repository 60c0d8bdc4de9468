package metrics

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leefowlercu/phoenix/internal/version"
)

// MetricsProvider is an interface for components that provide metrics.
type MetricsProvider interface {
	// CollectMetrics collects current metrics from the component.
	CollectMetrics(ctx context.Context) error
}

// Collector manages metric collection from various components.
type Collector struct {
	mu        sync.RWMutex
	providers map[string]MetricsProvider
	interval  time.Duration
	stopCh    chan struct{}
	running   bool
}

// NewCollector creates a new metrics collector.
func NewCollector(interval time.Duration) *Collector {
	return &Collector{
		providers: make(map[string]MetricsProvider),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Register adds a metrics provider to the collector.
func (c *Collector) Register(name string, provider MetricsProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[name] = provider
}

// Unregister removes a metrics provider from the collector.
func (c *Collector) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.providers, name)
}

// Start begins periodic metric collection.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	// Set daemon start time
	DaemonStartTime.Set(float64(time.Now().Unix()))

	DaemonInfo.WithLabelValues(version.Get().Version, runtime.Version()).Set(1)

	// Initial collection
	c.collect(ctx)

	// Start periodic collection
	go c.run(ctx)

	return nil
}

// Stop halts periodic metric collection.
func (c *Collector) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	close(c.stopCh)
	c.running = false
	return nil
}

// run is the main collection loop.
func (c *Collector) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

// collect gathers metrics from all registered providers.
func (c *Collector) collect(ctx context.Context) {
	c.mu.RLock()
	providers := make(map[string]MetricsProvider, len(c.providers))
	for k, v := range c.providers {
		providers[k] = v
	}
	c.mu.RUnlock()

	for name, provider := range providers {
		if err := provider.CollectMetrics(ctx); err != nil {
			ComponentStatus.WithLabelValues(name).Set(0)
		} else {
			ComponentStatus.WithLabelValues(name).Set(1)
		}
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a handler for a specific registry.
func HandlerFor(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordProviderRequest records a language model API request.
func RecordProviderRequest(provider, task string, duration time.Duration, inputTokens, outputTokens int, err error) {
	ProviderRequestsTotal.WithLabelValues(provider, task).Inc()
	ProviderDuration.WithLabelValues(provider, task).Observe(duration.Seconds())

	if inputTokens > 0 {
		ProviderTokensTotal.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		ProviderTokensTotal.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}

	if err != nil {
		ProviderErrorsTotal.WithLabelValues(provider, task).Inc()
	}
}

// RecordWorkflowTransition records a workflow status transition.
func RecordWorkflowTransition(from, to string) {
	WorkflowTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordWorkflowExecution records the duration of a workflow execution.
func RecordWorkflowExecution(duration time.Duration) {
	WorkflowExecutionDuration.Observe(duration.Seconds())
}

// RecordBucketFile records a processed bucket file.
func RecordBucketFile(kind string, err error) {
	if err != nil {
		BucketErrorsTotal.Inc()
		return
	}
	BucketFilesProcessed.WithLabelValues(kind).Inc()
}

// RecordScan records a discovery scan.
func RecordScan(filesVisited int, duration time.Duration) {
	ScanFilesVisited.Add(float64(filesVisited))
	ScanDuration.Observe(duration.Seconds())
}

// RecordScrape records an inspiration scrape.
func RecordScrape(err error) {
	if err != nil {
		ScrapesTotal.WithLabelValues("error").Inc()
		return
	}
	ScrapesTotal.WithLabelValues("ok").Inc()
}

// RecordSynthesis records a brand synthesis outcome.
func RecordSynthesis(outcome string) {
	SynthesisTotal.WithLabelValues(outcome).Inc()
}

// RecordBroadcast records a delivered broadcast message.
func RecordBroadcast(sink string) {
	BroadcastMessagesTotal.WithLabelValues(sink).Inc()
}

// RecordBroadcastDrop records a message dropped for a slow client.
func RecordBroadcastDrop() {
	BroadcastDroppedTotal.Inc()
}

// RecordWatcherEvent records a filesystem event.
func RecordWatcherEvent(eventType string) {
	WatcherEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route string, code int) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordMCPRequest records an MCP tool call.
func RecordMCPRequest(tool string) {
	MCPRequestsTotal.WithLabelValues(tool).Inc()
}

// UpdateBrandMetrics updates the knowledge base gauges.
func UpdateBrandMetrics(roots, inspirations, platforms, agents int) {
	DiscoveryRootsTotal.Set(float64(roots))
	InspirationsTotal.Set(float64(inspirations))
	PlatformsTotal.Set(float64(platforms))
	AgentsTotal.Set(float64(agents))
}

// UpdateWorkflowMetrics replaces the per-status workflow gauges.
func UpdateWorkflowMetrics(byStatus map[string]int) {
	WorkflowsByStatus.Reset()
	for status, n := range byStatus {
		WorkflowsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// UpdateBroadcastClients sets the connected broadcast client gauge.
func UpdateBroadcastClients(n int) {
	BroadcastClients.Set(float64(n))
}
