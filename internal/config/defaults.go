package config

import "github.com/spf13/viper"

const (
	appName = "phoenix"

	// EnvPrefix is the prefix applied to environment variable overrides.
	EnvPrefix = "PHOENIX"

	// EnvConfigDir names the environment variable that points at a config directory.
	EnvConfigDir = "PHOENIX_CONFIG_DIR"
)

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/phoenix/phoenix.log"

	DefaultLogRotationMaxSizeMB  = 50
	DefaultLogRotationMaxBackups = 5
	DefaultLogRotationMaxAgeDays = 28
	DefaultLogRotationCompress   = true

	DefaultWorkspaceRoot         = "~/.phoenix"
	DefaultWorkspaceBucketDir    = "bucket"
	DefaultWorkspaceProcessedDir = "bucket/processed"
	DefaultWorkspaceVBrainFile   = "brand_brain/vbrain.json"
	DefaultWorkspaceProfileFile  = "brand_brain/brand_profile.json"

	DefaultFocus = "General Brand Sovereignty"

	DefaultScannerSnippetChars     = 2000
	DefaultScannerFingerprintChars = 1000
	DefaultScannerMaxAssets        = 20
	DefaultScannerMaxSnippets      = 5

	DefaultIntelTimeoutSeconds = 10
	DefaultIntelUserAgent      = "Mozilla/5.0"
	DefaultIntelMaxParagraphs  = 10
	DefaultIntelMaxBodyBytes   = 5 * 1024 * 1024
	DefaultIntelConcurrency    = 4

	DefaultLLMProvider  = "anthropic"
	DefaultLLMModel     = "claude-sonnet-4-5-20250929"
	DefaultLLMRateLimit = 20 // requests per minute
	DefaultLLMAPIKeyEnv = "ANTHROPIC_API_KEY"

	DefaultBucketPlanWithLLM = false
	DefaultBucketWatch       = false

	DefaultWorkflowsJournal     = "memory"
	DefaultWorkflowsJournalPath = "~/.phoenix/workflows.db"

	DefaultPlatformsCatalogueFile = ""

	DefaultBroadcastMessageDelayMs           = 1500
	DefaultBroadcastDiscussionTimeoutSeconds = 120
	DefaultBroadcastRedisAddr                = ""
	DefaultBroadcastRedisChannel             = "phoenix:discussion"
	DefaultBroadcastRedisPasswordEnv         = "PHOENIX_REDIS_PASSWORD"

	DefaultDaemonHTTPPort        = 8000
	DefaultDaemonHTTPBind        = "127.0.0.1"
	DefaultDaemonShutdownTimeout = 30 // seconds
	DefaultDaemonPIDFile         = "~/.config/phoenix/daemon.pid"
	DefaultDaemonMetricsInterval = 15 // seconds
)

// DefaultSkipDirectories are directory names never descended into during discovery.
var DefaultSkipDirectories = []string{
	".git", ".hg", ".svn", "node_modules", "vendor", "__pycache__", ".venv", "venv",
}

// DefaultSkipPatterns are glob patterns for files never sampled during discovery.
var DefaultSkipPatterns = []string{
	"**/.DS_Store", "**/*.min.js", "**/*.lock", "**/package-lock.json",
}

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		LogRotation: LogRotationConfig{
			MaxSizeMB:  DefaultLogRotationMaxSizeMB,
			MaxBackups: DefaultLogRotationMaxBackups,
			MaxAgeDays: DefaultLogRotationMaxAgeDays,
			Compress:   DefaultLogRotationCompress,
		},
		Workspace: WorkspaceConfig{
			Root:         DefaultWorkspaceRoot,
			BucketDir:    DefaultWorkspaceBucketDir,
			ProcessedDir: DefaultWorkspaceProcessedDir,
			VBrainFile:   DefaultWorkspaceVBrainFile,
			ProfileFile:  DefaultWorkspaceProfileFile,
		},
		Focus: FocusConfig{
			Default: DefaultFocus,
		},
		Scanner: ScannerConfig{
			SnippetChars:     DefaultScannerSnippetChars,
			FingerprintChars: DefaultScannerFingerprintChars,
			MaxAssets:        DefaultScannerMaxAssets,
			MaxSnippets:      DefaultScannerMaxSnippets,
			SkipDirectories:  append([]string(nil), DefaultSkipDirectories...),
			SkipPatterns:     append([]string(nil), DefaultSkipPatterns...),
		},
		Intel: IntelConfig{
			TimeoutSeconds: DefaultIntelTimeoutSeconds,
			UserAgent:      DefaultIntelUserAgent,
			MaxParagraphs:  DefaultIntelMaxParagraphs,
			MaxBodyBytes:   DefaultIntelMaxBodyBytes,
			Concurrency:    DefaultIntelConcurrency,
		},
		LLM: LLMConfig{
			Provider:  DefaultLLMProvider,
			Model:     DefaultLLMModel,
			RateLimit: DefaultLLMRateLimit,
			APIKeyEnv: DefaultLLMAPIKeyEnv,
			Routing:   map[string]string{},
		},
		Bucket: BucketConfig{
			PlanWithLLM: DefaultBucketPlanWithLLM,
			Watch:       DefaultBucketWatch,
		},
		Workflows: WorkflowsConfig{
			Journal:     DefaultWorkflowsJournal,
			JournalPath: DefaultWorkflowsJournalPath,
		},
		Platforms: PlatformsConfig{
			CatalogueFile: DefaultPlatformsCatalogueFile,
		},
		Broadcast: BroadcastConfig{
			MessageDelayMs:           DefaultBroadcastMessageDelayMs,
			DiscussionTimeoutSeconds: DefaultBroadcastDiscussionTimeoutSeconds,
			RedisAddr:                DefaultBroadcastRedisAddr,
			RedisChannel:             DefaultBroadcastRedisChannel,
			RedisPasswordEnv:         DefaultBroadcastRedisPasswordEnv,
		},
		Agents: AgentsConfig{
			AutoIntegrate: map[string]string{},
		},
		Daemon: DaemonConfig{
			HTTPPort:        DefaultDaemonHTTPPort,
			HTTPBind:        DefaultDaemonHTTPBind,
			ShutdownTimeout: DefaultDaemonShutdownTimeout,
			PIDFile:         DefaultDaemonPIDFile,
			Metrics: MetricsConfig{
				CollectionInterval: DefaultDaemonMetricsInterval,
			},
		},
	}
}

// setDefaults registers all default configuration values with a viper instance.
// Every key is registered so environment overrides apply during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_rotation.max_size_mb", DefaultLogRotationMaxSizeMB)
	v.SetDefault("log_rotation.max_backups", DefaultLogRotationMaxBackups)
	v.SetDefault("log_rotation.max_age_days", DefaultLogRotationMaxAgeDays)
	v.SetDefault("log_rotation.compress", DefaultLogRotationCompress)

	v.SetDefault("workspace.root", DefaultWorkspaceRoot)
	v.SetDefault("workspace.bucket_dir", DefaultWorkspaceBucketDir)
	v.SetDefault("workspace.processed_dir", DefaultWorkspaceProcessedDir)
	v.SetDefault("workspace.vbrain_file", DefaultWorkspaceVBrainFile)
	v.SetDefault("workspace.profile_file", DefaultWorkspaceProfileFile)

	v.SetDefault("focus.default", DefaultFocus)

	v.SetDefault("scanner.snippet_chars", DefaultScannerSnippetChars)
	v.SetDefault("scanner.fingerprint_chars", DefaultScannerFingerprintChars)
	v.SetDefault("scanner.max_assets", DefaultScannerMaxAssets)
	v.SetDefault("scanner.max_snippets", DefaultScannerMaxSnippets)
	v.SetDefault("scanner.skip_directories", DefaultSkipDirectories)
	v.SetDefault("scanner.skip_patterns", DefaultSkipPatterns)

	v.SetDefault("intel.timeout_seconds", DefaultIntelTimeoutSeconds)
	v.SetDefault("intel.user_agent", DefaultIntelUserAgent)
	v.SetDefault("intel.max_paragraphs", DefaultIntelMaxParagraphs)
	v.SetDefault("intel.max_body_bytes", DefaultIntelMaxBodyBytes)
	v.SetDefault("intel.concurrency", DefaultIntelConcurrency)

	v.SetDefault("llm.provider", DefaultLLMProvider)
	v.SetDefault("llm.model", DefaultLLMModel)
	v.SetDefault("llm.rate_limit", DefaultLLMRateLimit)
	v.SetDefault("llm.api_key_env", DefaultLLMAPIKeyEnv)

	v.SetDefault("bucket.plan_with_llm", DefaultBucketPlanWithLLM)
	v.SetDefault("bucket.watch", DefaultBucketWatch)

	v.SetDefault("workflows.journal", DefaultWorkflowsJournal)
	v.SetDefault("workflows.journal_path", DefaultWorkflowsJournalPath)

	v.SetDefault("platforms.catalogue_file", DefaultPlatformsCatalogueFile)

	v.SetDefault("broadcast.message_delay_ms", DefaultBroadcastMessageDelayMs)
	v.SetDefault("broadcast.discussion_timeout_seconds", DefaultBroadcastDiscussionTimeoutSeconds)
	v.SetDefault("broadcast.redis_addr", DefaultBroadcastRedisAddr)
	v.SetDefault("broadcast.redis_channel", DefaultBroadcastRedisChannel)
	v.SetDefault("broadcast.redis_password_env", DefaultBroadcastRedisPasswordEnv)

	v.SetDefault("daemon.http_port", DefaultDaemonHTTPPort)
	v.SetDefault("daemon.http_bind", DefaultDaemonHTTPBind)
	v.SetDefault("daemon.shutdown_timeout", DefaultDaemonShutdownTimeout)
	v.SetDefault("daemon.pid_file", DefaultDaemonPIDFile)
	v.SetDefault("daemon.metrics.collection_interval", DefaultDaemonMetricsInterval)
}
