package subcommands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/daemon"
)

// StartCmd starts the daemon in foreground mode.
var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in foreground mode",
	Long: "Start the daemon in foreground mode.\n\n" +
		"The daemon prepares the workspace, restores the workflow journal and knowledge base, " +
		"and serves the HTTP API until it receives SIGINT or SIGTERM. SIGHUP reloads the " +
		"configuration file. Use '&', 'nohup', or a service manager such as systemd to run " +
		"it in the background; under systemd it reports readiness through sd_notify.",
	Example: `  # Start daemon in foreground
  phoenix daemon start

  # Start daemon in background
  nohup phoenix daemon start &`,
	PreRunE: validateStart,
	RunE:    runStart,
}

func validateStart(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []daemon.BuildOption{daemon.WithBuildLogger(slog.Default())}
	if logManager != nil {
		opts = append(opts, daemon.WithLogManager(logManager))
	}

	d, err := daemon.Build(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize daemon; %w", err)
	}

	slog.Info("starting daemon",
		"http_bind", cfg.Daemon.HTTPBind,
		"http_port", cfg.Daemon.HTTPPort,
		"pid_file", config.ExpandPath(cfg.Daemon.PIDFile),
		"workspace", cfg.Workspace.RootPath(),
	)

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("daemon error; %w", err)
	}

	return nil
}
