package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/udelar-dtx/dtx_backend/cmd/http"
	systemcmd "github.com/udelar-dtx/dtx_backend/cmd/system"
	trialcmd "github.com/udelar-dtx/dtx_backend/cmd/trial"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "dtx",
	Short: "Backend of the DTx oncology exercise trial.",
	Long: `dtx runs the daily triage and exercise prescription backend of the
oncology exercise trial. Patients file a morning self-report, the clinical team
sees the day's board and records each supervised session.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(trialcmd.NewTrialCommand())
}
