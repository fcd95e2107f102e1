package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auroralabs/heliowatch/telemetry"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print stored space weather snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			store, err := telemetry.OpenStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			snaps, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no stored snapshots")
				return nil
			}

			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{
					s.TakenAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%.1f", s.WindSpeed),
					fmt.Sprintf("%.2f", s.WindDensity),
					fmt.Sprintf("%.2f", s.KpIndex),
					s.FlareClass,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
				[]string{"Time", "Wind km/s", "Density p/cm³", "Kp", "Flare"},
				rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 24, "Maximum number of snapshots to print")
	return cmd
}
