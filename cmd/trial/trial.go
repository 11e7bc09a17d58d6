package trial

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/udelar-dtx/dtx_backend/config"
	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/database"
)

func NewTrialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Study administration commands",
	}

	cmd.AddCommand(NewPatientAddCommand())
	cmd.AddCommand(NewEnrollCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewClassifyCommand())

	return cmd
}

// env is what the database backed subcommands share.
type env struct {
	cfg   *config.Config
	db    *store.Store
	clock clock.Clock
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	clk, err := clock.New(cfg.Trial.Timezone)
	if err != nil {
		return nil, err
	}
	drv, err := database.NewEntDriver(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &env{cfg: cfg, db: store.New(drv), clock: clk}, nil
}

func (e *env) Close() error { return e.db.Close() }
