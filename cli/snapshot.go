package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/auroralabs/heliowatch/telemetry"
)

func newSnapshotCommand(cctx *commandContext) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch current space weather readings and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			logger := newLogger(os.Stderr, cfg.Logging.Level)
			client := telemetry.NewClient(cfg.Endpoints(), cfg.Telemetry.ProxyPrefix, logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			snap, err := client.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("fetch telemetry: %w", err)
			}

			if save {
				store, err := telemetry.OpenStore(cfg.Database.Path)
				if err != nil {
					return fmt.Errorf("open history store: %w", err)
				}
				defer store.Close()
				if err := store.Append(ctx, snap); err != nil {
					return fmt.Errorf("store snapshot: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
				[]string{"Reading", "Value"},
				snapshotRows(snap)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Append the snapshot to the history database")
	return cmd
}

func snapshotRows(snap telemetry.Snapshot) [][]string {
	return [][]string{
		{"Taken at", snap.TakenAt.Local().Format("2006-01-02 15:04:05")},
		{"Solar wind speed", fmt.Sprintf("%.1f km/s", snap.WindSpeed)},
		{"Proton density", fmt.Sprintf("%.2f p/cm³", snap.WindDensity)},
		{"Kp index", fmt.Sprintf("%.2f", snap.KpIndex)},
		{"Flare class", snap.FlareClass},
		{"X-ray flux", fmt.Sprintf("%.2e W/m²", snap.FlareFlux)},
	}
}
