package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/agents"
	"github.com/leefowlercu/phoenix/cmd/bucket"
	"github.com/leefowlercu/phoenix/cmd/config"
	"github.com/leefowlercu/phoenix/cmd/daemon"
	"github.com/leefowlercu/phoenix/cmd/focus"
	"github.com/leefowlercu/phoenix/cmd/generate"
	"github.com/leefowlercu/phoenix/cmd/inspire"
	"github.com/leefowlercu/phoenix/cmd/manifest"
	"github.com/leefowlercu/phoenix/cmd/platforms"
	"github.com/leefowlercu/phoenix/cmd/roots"
	"github.com/leefowlercu/phoenix/cmd/status"
	"github.com/leefowlercu/phoenix/cmd/sync"
	"github.com/leefowlercu/phoenix/cmd/version"
	"github.com/leefowlercu/phoenix/cmd/workflows"
	internalconfig "github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var phoenixCmd = &cobra.Command{
	Use:   "phoenix",
	Short: "A brand operations daemon for creators and small teams",
	Long: "Phoenix learns a brand from the projects it already lives in and keeps it moving.\n\n" +
		"A background daemon scans registered project roots and inspiration URLs, synthesizes a brand manifest " +
		"with an LLM, and turns files dropped into the bucket into content workflows that agents execute and " +
		"platforms publish once approved. The commands below talk to that daemon over its local HTTP API.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	daemon.SetLogManager(logManager)

	phoenixCmd.AddCommand(daemon.DaemonCmd)
	phoenixCmd.AddCommand(config.ConfigCmd)
	phoenixCmd.AddCommand(status.StatusCmd)
	phoenixCmd.AddCommand(focus.FocusCmd)
	phoenixCmd.AddCommand(roots.RootsCmd)
	phoenixCmd.AddCommand(inspire.InspireCmd)
	phoenixCmd.AddCommand(platforms.PlatformsCmd)
	phoenixCmd.AddCommand(agents.AgentsCmd)
	phoenixCmd.AddCommand(bucket.BucketCmd)
	phoenixCmd.AddCommand(workflows.WorkflowsCmd)
	phoenixCmd.AddCommand(sync.SyncCmd)
	phoenixCmd.AddCommand(manifest.ManifestCmd)
	phoenixCmd.AddCommand(generate.GenerateCmd)
	phoenixCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := internalconfig.Init(); err != nil {
		return err
	}

	cfg := internalconfig.Get()
	levelStr := cfg.LogLevel
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
		}
	}

	rotation := logging.Rotation{
		MaxSizeMB:  cfg.LogRotation.MaxSizeMB,
		MaxBackups: cfg.LogRotation.MaxBackups,
		MaxAgeDays: cfg.LogRotation.MaxAgeDays,
		Compress:   cfg.LogRotation.Compress,
	}
	if err := logManager.Upgrade(internalconfig.ExpandPath(cfg.LogFile), level, logging.WithRotation(rotation)); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}

	return nil
}

func Execute() error {
	phoenixCmd.SilenceErrors = true
	phoenixCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := phoenixCmd.Execute()

	if err != nil {
		cmd, _, _ := phoenixCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = phoenixCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Printf("\n")
			cmd.SetOut(os.Stdout)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
