package trial

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/udelar-dtx/dtx_backend/internal/service/export"
)

func NewExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every daily record to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			b, rows, err := export.New(e.db, nil, e.clock).Workbook(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to build export: %w", err)
			}
			if out == "" {
				out = export.FileName(e.clock.Now())
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records written to %s\n", rows, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default dtx_registros_<timestamp>.xlsx)")

	return cmd
}
