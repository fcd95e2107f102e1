package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/auroralabs/heliowatch/dashboard"
	"github.com/auroralabs/heliowatch/sonify"
	"github.com/auroralabs/heliowatch/telemetry"
)

func newDashboardCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Run the interactive dashboard with sonification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), cfg)
		},
	}
}

func runDashboard(ctx context.Context, cfg Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := openLogFile(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.Logging.Level)

	client := telemetry.NewClient(cfg.Endpoints(), cfg.Telemetry.ProxyPrefix, logger)

	// The store is optional: a locked or unwritable database degrades to a
	// session without history instead of refusing to start.
	var store *telemetry.Store
	if s, err := telemetry.OpenStore(cfg.Database.Path); err != nil {
		logger.Warn("history store unavailable", "path", cfg.Database.Path, "error", err)
	} else {
		store = s
		defer store.Close()
		retention := time.Duration(cfg.Database.RetentionDays) * 24 * time.Hour
		if err := store.Prune(ctx, retention); err != nil {
			logger.Warn("history prune failed", "error", err)
		}
	}

	var sink sonify.Sink
	if !cfg.Audio.Enabled {
		sink = sonify.NopSink{}
	}
	ctrl := sonify.NewController(cfg.EngineConfig(), nil, sink)
	defer ctrl.Close()

	dash, err := dashboard.New(ctrl, client, store, logger, dashboard.Config{
		PollInterval: time.Duration(cfg.Telemetry.PollInterval) * time.Second,
	})
	if err != nil {
		return err
	}

	logger.Info("dashboard starting",
		"poll_interval", cfg.Telemetry.PollInterval,
		"audio", cfg.Audio.Enabled,
		"mode", cfg.Audio.Mode)
	return dash.Run(ctx)
}
