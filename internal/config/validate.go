package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// ValidLLMProviders lists recognized language model providers.
var ValidLLMProviders = map[string]bool{
	"anthropic": true,
	"openai":    true,
	"google":    true,
}

var validJournals = map[string]bool{
	"memory": true,
	"sqlite": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	atLeast := func(field string, got, min int) {
		if got < min {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("must be at least %d, got %d", min, got),
			})
		}
	}
	notEmpty := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "must not be empty"})
		}
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}
	atLeast("log_rotation.max_size_mb", cfg.LogRotation.MaxSizeMB, 1)
	atLeast("log_rotation.max_backups", cfg.LogRotation.MaxBackups, 0)
	atLeast("log_rotation.max_age_days", cfg.LogRotation.MaxAgeDays, 0)

	notEmpty("workspace.root", cfg.Workspace.Root)
	notEmpty("workspace.bucket_dir", cfg.Workspace.BucketDir)
	notEmpty("workspace.processed_dir", cfg.Workspace.ProcessedDir)
	notEmpty("workspace.vbrain_file", cfg.Workspace.VBrainFile)
	notEmpty("workspace.profile_file", cfg.Workspace.ProfileFile)

	notEmpty("focus.default", cfg.Focus.Default)

	atLeast("scanner.snippet_chars", cfg.Scanner.SnippetChars, 1)
	atLeast("scanner.fingerprint_chars", cfg.Scanner.FingerprintChars, 1)
	atLeast("scanner.max_assets", cfg.Scanner.MaxAssets, 1)
	atLeast("scanner.max_snippets", cfg.Scanner.MaxSnippets, 1)

	atLeast("intel.timeout_seconds", cfg.Intel.TimeoutSeconds, 1)
	atLeast("intel.max_paragraphs", cfg.Intel.MaxParagraphs, 1)
	atLeast("intel.concurrency", cfg.Intel.Concurrency, 1)
	if cfg.Intel.MaxBodyBytes < 1 {
		errs = append(errs, ValidationError{
			Field:   "intel.max_body_bytes",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Intel.MaxBodyBytes),
		})
	}

	if cfg.LLM.Provider == "" {
		errs = append(errs, ValidationError{Field: "llm.provider", Message: "must not be empty"})
	} else if !ValidLLMProviders[cfg.LLM.Provider] {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("must be one of: anthropic, openai, google; got %q", cfg.LLM.Provider),
		})
	}
	notEmpty("llm.model", cfg.LLM.Model)
	atLeast("llm.rate_limit", cfg.LLM.RateLimit, 1)
	for task, provider := range cfg.LLM.Routing {
		if !ValidLLMProviders[provider] {
			errs = append(errs, ValidationError{
				Field:   "llm.routing." + task,
				Message: fmt.Sprintf("must be one of: anthropic, openai, google; got %q", provider),
			})
		}
	}

	if !validJournals[cfg.Workflows.Journal] {
		errs = append(errs, ValidationError{
			Field:   "workflows.journal",
			Message: fmt.Sprintf("must be one of: memory, sqlite; got %q", cfg.Workflows.Journal),
		})
	} else if cfg.Workflows.Journal == "sqlite" && cfg.Workflows.JournalPath == "" {
		errs = append(errs, ValidationError{
			Field:   "workflows.journal_path",
			Message: "must not be empty when journal is sqlite",
		})
	}

	atLeast("broadcast.message_delay_ms", cfg.Broadcast.MessageDelayMs, 0)
	atLeast("broadcast.discussion_timeout_seconds", cfg.Broadcast.DiscussionTimeoutSeconds, 1)
	if cfg.Broadcast.RedisAddr != "" {
		notEmpty("broadcast.redis_channel", cfg.Broadcast.RedisChannel)
	}

	for name, url := range cfg.Agents.AutoIntegrate {
		notEmpty("agents.auto_integrate."+name, url)
	}

	if cfg.Daemon.HTTPPort < 1 || cfg.Daemon.HTTPPort > 65535 {
		errs = append(errs, ValidationError{
			Field:   "daemon.http_port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Daemon.HTTPPort),
		})
	}
	notEmpty("daemon.http_bind", cfg.Daemon.HTTPBind)
	atLeast("daemon.shutdown_timeout", cfg.Daemon.ShutdownTimeout, 1)
	notEmpty("daemon.pid_file", cfg.Daemon.PIDFile)
	atLeast("daemon.metrics.collection_interval", cfg.Daemon.Metrics.CollectionInterval, 1)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
