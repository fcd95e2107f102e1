package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// commandContext carries lazily loaded configuration shared by subcommands.
type commandContext struct {
	configFlag *string

	cfg     *Config
	cfgPath string
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, path, err := LoadConfig(*c.configFlag)
	if err != nil {
		return Config{}, err
	}
	c.cfg = &cfg
	c.cfgPath = path
	return cfg, nil
}

// NewRootCommand builds the heliowatch command tree. Running the root
// command with no subcommand starts the dashboard.
func NewRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	dashboardCmd := newDashboardCommand(ctx)

	rootCmd := &cobra.Command{
		Use:           "heliowatch",
		Short:         "Space weather dashboard with sonification",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          dashboardCmd.RunE,
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(newSnapshotCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

// openLogFile opens the configured log file for append, creating parent
// directories as needed.
func openLogFile(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
