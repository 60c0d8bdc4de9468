package config

import (
	"os"
	"path/filepath"
)

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel    string            `yaml:"log_level" mapstructure:"log_level"`
	LogFile     string            `yaml:"log_file" mapstructure:"log_file"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
	Workspace   WorkspaceConfig   `yaml:"workspace" mapstructure:"workspace"`
	Focus       FocusConfig       `yaml:"focus" mapstructure:"focus"`
	Scanner     ScannerConfig     `yaml:"scanner" mapstructure:"scanner"`
	Intel       IntelConfig       `yaml:"intel" mapstructure:"intel"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Bucket      BucketConfig      `yaml:"bucket" mapstructure:"bucket"`
	Workflows   WorkflowsConfig   `yaml:"workflows" mapstructure:"workflows"`
	Platforms   PlatformsConfig   `yaml:"platforms" mapstructure:"platforms"`
	Broadcast   BroadcastConfig   `yaml:"broadcast" mapstructure:"broadcast"`
	Agents      AgentsConfig      `yaml:"agents" mapstructure:"agents"`
	Daemon      DaemonConfig      `yaml:"daemon" mapstructure:"daemon"`
}

// LogRotationConfig controls rotation of the JSON log file.
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// WorkspaceConfig locates the bucket, the processed archive, and the persisted documents.
// Relative entries resolve against Root.
type WorkspaceConfig struct {
	Root         string `yaml:"root" mapstructure:"root"`
	BucketDir    string `yaml:"bucket_dir" mapstructure:"bucket_dir"`
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	VBrainFile   string `yaml:"vbrain_file" mapstructure:"vbrain_file"`
	ProfileFile  string `yaml:"profile_file" mapstructure:"profile_file"`
}

// RootPath returns the expanded workspace root.
func (w WorkspaceConfig) RootPath() string {
	return ExpandPath(w.Root)
}

// BucketPath returns the resolved bucket directory.
func (w WorkspaceConfig) BucketPath() string {
	return w.resolve(w.BucketDir)
}

// ProcessedPath returns the resolved processed-archive directory.
func (w WorkspaceConfig) ProcessedPath() string {
	return w.resolve(w.ProcessedDir)
}

// VBrainPath returns the resolved knowledge base document path.
func (w WorkspaceConfig) VBrainPath() string {
	return w.resolve(w.VBrainFile)
}

// ProfilePath returns the resolved brand profile document path.
func (w WorkspaceConfig) ProfilePath() string {
	return w.resolve(w.ProfileFile)
}

func (w WorkspaceConfig) resolve(p string) string {
	p = ExpandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.RootPath(), p)
}

// FocusConfig holds the initial global focus.
type FocusConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
}

// ScannerConfig bounds what a discovery scan samples.
type ScannerConfig struct {
	SnippetChars     int      `yaml:"snippet_chars" mapstructure:"snippet_chars"`
	FingerprintChars int      `yaml:"fingerprint_chars" mapstructure:"fingerprint_chars"`
	MaxAssets        int      `yaml:"max_assets" mapstructure:"max_assets"`
	MaxSnippets      int      `yaml:"max_snippets" mapstructure:"max_snippets"`
	SkipDirectories  []string `yaml:"skip_directories,flow" mapstructure:"skip_directories"`
	SkipPatterns     []string `yaml:"skip_patterns,flow" mapstructure:"skip_patterns"`
}

// IntelConfig holds web scraping settings.
type IntelConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxParagraphs  int    `yaml:"max_paragraphs" mapstructure:"max_paragraphs"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Concurrency    int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// LLMConfig holds language model provider configuration.
type LLMConfig struct {
	Provider  string            `yaml:"provider" mapstructure:"provider"`
	Model     string            `yaml:"model" mapstructure:"model"`
	RateLimit int               `yaml:"rate_limit" mapstructure:"rate_limit"`
	APIKey    *string           `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv string            `yaml:"api_key_env" mapstructure:"api_key_env"`
	Routing   map[string]string `yaml:"routing" mapstructure:"routing"`
}

// ResolveAPIKey returns the API key from config or falls back to environment variable.
func (c *LLMConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// BucketConfig controls bucket processing.
type BucketConfig struct {
	PlanWithLLM bool `yaml:"plan_with_llm" mapstructure:"plan_with_llm"`
	Watch       bool `yaml:"watch" mapstructure:"watch"`
}

// WorkflowsConfig selects the workflow journal.
type WorkflowsConfig struct {
	Journal     string `yaml:"journal" mapstructure:"journal"`
	JournalPath string `yaml:"journal_path" mapstructure:"journal_path"`
}

// PlatformsConfig points at an optional platform catalogue.
type PlatformsConfig struct {
	CatalogueFile string `yaml:"catalogue_file" mapstructure:"catalogue_file"`
}

// BroadcastConfig holds discussion broadcast settings.
type BroadcastConfig struct {
	MessageDelayMs           int    `yaml:"message_delay_ms" mapstructure:"message_delay_ms"`
	DiscussionTimeoutSeconds int    `yaml:"discussion_timeout_seconds" mapstructure:"discussion_timeout_seconds"`
	RedisAddr                string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisChannel             string `yaml:"redis_channel" mapstructure:"redis_channel"`
	RedisPasswordEnv         string `yaml:"redis_password_env" mapstructure:"redis_password_env"`
}

// AgentsConfig lists agents registered automatically at daemon start.
// Keys are lower-cased by the config loader.
type AgentsConfig struct {
	AutoIntegrate map[string]string `yaml:"auto_integrate" mapstructure:"auto_integrate"`
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	HTTPPort        int           `yaml:"http_port" mapstructure:"http_port"`
	HTTPBind        string        `yaml:"http_bind" mapstructure:"http_bind"`
	ShutdownTimeout int           `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	PIDFile         string        `yaml:"pid_file" mapstructure:"pid_file"`
	Metrics         MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// MetricsConfig holds metrics collection configuration.
type MetricsConfig struct {
	CollectionInterval int `yaml:"collection_interval" mapstructure:"collection_interval"`
}
