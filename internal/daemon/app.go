package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/leefowlercu/phoenix/internal/broadcast"
	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/intel"
	"github.com/leefowlercu/phoenix/internal/logging"
	"github.com/leefowlercu/phoenix/internal/mcp"
	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/orchestrator"
	"github.com/leefowlercu/phoenix/internal/platforms"
	"github.com/leefowlercu/phoenix/internal/providers"
	"github.com/leefowlercu/phoenix/internal/providers/llm"
	"github.com/leefowlercu/phoenix/internal/scanner"
	"github.com/leefowlercu/phoenix/internal/schema"
	"github.com/leefowlercu/phoenix/internal/synthesis"
	"github.com/leefowlercu/phoenix/internal/vbrain"
	"github.com/leefowlercu/phoenix/internal/watcher"
	"github.com/leefowlercu/phoenix/internal/workflow"
)

type buildOptions struct {
	logger     *slog.Logger
	logManager *logging.Manager
	llmOptions []llm.Option
	homeDir    string
	notifier   Notifier
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithBuildLogger sets the logger shared by every component.
func WithBuildLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// WithLogManager lets config reloads change the log level.
func WithLogManager(m *logging.Manager) BuildOption {
	return func(o *buildOptions) {
		o.logManager = m
	}
}

// WithLLMOptions appends options to every language model adapter.
func WithLLMOptions(opts ...llm.Option) BuildOption {
	return func(o *buildOptions) {
		o.llmOptions = append(o.llmOptions, opts...)
	}
}

// WithDiscoveryHome overrides the home directory searched for project roots.
func WithDiscoveryHome(dir string) BuildOption {
	return func(o *buildOptions) {
		o.homeDir = dir
	}
}

// WithBuildNotifier replaces the systemd notifier.
func WithBuildNotifier(n Notifier) BuildOption {
	return func(o *buildOptions) {
		o.notifier = n
	}
}

// Build assembles a daemon and everything it owns from cfg. ctx bounds
// background work such as discussions and event relays; cancel it to stop
// the daemon.
func Build(ctx context.Context, cfg *config.Config, opts ...BuildOption) (*Daemon, error) {
	o := buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	daemonOpts := []Option{WithLogger(logger)}
	if o.notifier != nil {
		daemonOpts = append(daemonOpts, WithNotifier(o.notifier))
	}
	d := NewDaemon(DaemonConfig{
		HTTPPort:        cfg.Daemon.HTTPPort,
		HTTPBind:        cfg.Daemon.HTTPBind,
		ShutdownTimeout: time.Duration(cfg.Daemon.ShutdownTimeout) * time.Second,
		PIDFile:         config.ExpandPath(cfg.Daemon.PIDFile),
	}, daemonOpts...)

	// On any error below, release what was already acquired.
	ok := false
	defer func() {
		if !ok {
			d.runClosers()
		}
	}()

	root := cfg.Workspace.RootPath()
	bucketDir := cfg.Workspace.BucketPath()
	processedDir := cfg.Workspace.ProcessedPath()
	for _, dir := range []string{root, bucketDir, processedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workspace directory %s; %w", dir, err)
		}
	}

	bus := events.NewBus()
	d.AddCloser(bus.Close)
	config.SetEventBus(bus)
	d.AddCloser(func() error {
		config.SetEventBus(nil)
		return nil
	})

	journal, err := workflow.OpenJournal(ctx, cfg.Workflows.Journal, config.ExpandPath(cfg.Workflows.JournalPath))
	if err != nil {
		return nil, err
	}
	d.AddCloser(journal.Close)

	table := workflow.NewTable(
		workflow.WithJournal(journal),
		workflow.WithBus(bus),
		workflow.WithLogger(logger),
	)
	if _, err := table.Restore(ctx); err != nil {
		return nil, err
	}

	store := vbrain.NewStore(cfg.Workspace.VBrainPath(), vbrain.WithLogger(logger))
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load knowledge base; %w", err)
	}

	platformRegistry := platforms.NewRegistry(platforms.WithLogger(logger))
	if path := config.ExpandPath(cfg.Platforms.CatalogueFile); path != "" {
		n, err := platformRegistry.LoadCatalogue(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("no platform catalogue", "path", path)
		case err != nil:
			return nil, err
		default:
			logger.Info("platform catalogue loaded", "path", path, "platforms", n)
		}
	}

	generators, err := llm.NewRegistry(cfg.LLM, o.llmOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create language model registry; %w", err)
	}

	validator := schema.NewValidator()
	profilePath := cfg.Workspace.ProfilePath()
	engine := synthesis.NewEngine(generators, profilePath,
		synthesis.WithLogger(logger),
		synthesis.WithValidator(validator),
	)
	content := synthesis.NewContentEngine(generators, profilePath, logger)

	processorOpts := []workflow.ProcessorOption{
		workflow.WithProcessorBus(bus),
		workflow.WithProcessorLogger(logger),
	}
	if cfg.Bucket.PlanWithLLM {
		processorOpts = append(processorOpts, workflow.WithPlanner(workflow.NewLLMPlanner(generators, validator)))
	}
	processor := workflow.NewBucketProcessor(table, bucketDir, processedDir, processorOpts...)

	var runner workflow.AgentRunner = workflow.SimulatedRunner{}
	if g, err := generators.Default(); err == nil && g.Available() {
		runner = workflow.NewContentRunner(content, logger)
		logger.Info("workflow tasks drafted with language model", "provider", g.Name())
	}
	poster := platforms.NewPoster(platformRegistry, platforms.WithPosterLogger(logger))
	executor := workflow.NewExecutor(table, poster, bucketDir, processedDir,
		workflow.WithRunner(runner),
		workflow.WithExecutorLogger(logger),
	)

	hub := broadcast.NewHub(logger)
	stopRelay := hub.RelayBus(ctx, bus)
	d.AddCloser(func() error {
		stopRelay()
		return nil
	})
	if addr := cfg.Broadcast.RedisAddr; addr != "" {
		relay, err := broadcast.NewRedisRelay(ctx, addr, os.Getenv(cfg.Broadcast.RedisPasswordEnv), cfg.Broadcast.RedisChannel)
		if err != nil {
			logger.Warn("redis relay unavailable; discussions stay local", "addr", addr, "error", err)
		} else {
			unsubscribe := hub.Subscribe(relay)
			d.AddCloser(func() error {
				unsubscribe()
				return relay.Close()
			})
		}
	}
	discussion := broadcast.NewDiscussion(hub,
		time.Duration(cfg.Broadcast.MessageDelayMs)*time.Millisecond,
		time.Duration(cfg.Broadcast.DiscussionTimeoutSeconds)*time.Second,
		logger,
	)
	d.AddCloser(func() error {
		discussion.Stop()
		return nil
	})

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithFocus(cfg.Focus.Default),
		orchestrator.WithBaseContext(ctx),
	}
	if o.homeDir != "" {
		orchOpts = append(orchOpts, orchestrator.WithHomeDir(o.homeDir))
	}
	orch, err := orchestrator.New(root, orchestrator.Components{
		Store: store,
		Scanner: scanner.New(
			scanner.WithLimits(scanner.Limits{
				SnippetChars:     cfg.Scanner.SnippetChars,
				FingerprintChars: cfg.Scanner.FingerprintChars,
				MaxAssets:        cfg.Scanner.MaxAssets,
				MaxSnippets:      cfg.Scanner.MaxSnippets,
			}),
			scanner.WithFilter(scanner.NewFilter(cfg.Scanner.SkipDirectories, cfg.Scanner.SkipPatterns)),
			scanner.WithLogger(logger),
		),
		Fetcher: intel.NewFetcher(
			intel.WithTimeout(time.Duration(cfg.Intel.TimeoutSeconds)*time.Second),
			intel.WithUserAgent(cfg.Intel.UserAgent),
			intel.WithMaxParagraphs(cfg.Intel.MaxParagraphs),
			intel.WithMaxBodyBytes(cfg.Intel.MaxBodyBytes),
			intel.WithConcurrency(cfg.Intel.Concurrency),
			intel.WithLogger(logger),
		),
		Synthesis:  engine,
		Content:    content,
		Platforms:  platformRegistry,
		Table:      table,
		Processor:  processor,
		Executor:   executor,
		Discussion: discussion,
		Bus:        bus,
	}, orchOpts...)
	if err != nil {
		return nil, err
	}
	if err := orch.IntegrateAgents(ctx, cfg.Agents.AutoIntegrate); err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(orch, mcp.DefaultConfig(), mcp.WithBus(bus), mcp.WithLogger(logger))
	d.AddService("mcp", mcpServer)
	d.Server().SetMCPHandler(mcpServer.Handler())

	interval := time.Duration(cfg.Daemon.Metrics.CollectionInterval) * time.Second
	collector := metrics.NewCollector(interval)
	collector.Register("workflows", table)
	collector.Register("broadcast", hub)
	collector.Register("brand", orch)
	collector.Register("supervisor", d.Supervisor())
	d.AddService("metrics", collector)
	d.Server().SetMetricsHandler(metrics.Handler())

	d.Server().SetAPI(NewAPI(orch, APIConfig{
		BucketDir:    bucketDir,
		ProcessedDir: processedDir,
		Hub:          hub,
		Jobs:         NewJobRunner(bus, d.HealthManager(), logger),
		Logger:       logger,
	}))

	if cfg.Bucket.Watch {
		d.AddBackground(func(ctx context.Context) {
			d.Supervisor().Supervise(ctx, "watcher", RestartOnFailure, func() (Runnable, error) {
				return watcher.New(bus, bucketDir, watcher.WithLogger(logger))
			})
		})
	}

	d.OnConfigReload(func() error {
		return applyReload(config.Get(), o.logManager, generators, discussion)
	})
	stopReload := bus.Subscribe(events.ConfigReloaded, func(events.Event) {
		if err := d.TriggerConfigReload(); err != nil {
			logger.Warn("config reload incomplete", "error", err)
		}
	})
	d.AddCloser(func() error {
		stopReload()
		return nil
	})

	ok = true
	logger.Info("daemon assembled",
		"workspace", root,
		"bucket", bucketDir,
		"journal", cfg.Workflows.Journal,
		"platforms", platformRegistry.Len(),
		"watch", cfg.Bucket.Watch,
	)
	return d, nil
}

// applyReload applies the hot-reloadable sections of cfg.
func applyReload(cfg *config.Config, lm *logging.Manager, generators *providers.Registry, discussion *broadcast.Discussion) error {
	if cfg == nil {
		return errors.New("no configuration loaded")
	}
	if lm != nil {
		level, ok := logging.ParseLevel(cfg.LogLevel)
		if !ok {
			return fmt.Errorf("invalid log level %q", cfg.LogLevel)
		}
		lm.SetLevel(level)
	}
	generators.SetRoutes(cfg.LLM.Routing)
	discussion.SetTiming(
		time.Duration(cfg.Broadcast.MessageDelayMs)*time.Millisecond,
		time.Duration(cfg.Broadcast.DiscussionTimeoutSeconds)*time.Second,
	)
	return nil
}
