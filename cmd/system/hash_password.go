package system

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udelar-dtx/dtx_backend/config"
	"github.com/udelar-dtx/dtx_backend/pkg/util/password"
)

func NewHashPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash the clinical team password for authentication.staff_password_hash",
		Long: `Reads a password from --password or the first line of stdin and prints its
argon2id hash using the password parameters of the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := cmd.Flags().GetString("password")
			if err != nil {
				return err
			}
			if secret == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}
			if secret == "" {
				return errors.New("password is empty")
			}

			params := password.DefaultParams()
			cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
			if cfg, err := config.ReadConfig(filepath.Dir(cfgPath)); err == nil {
				params = password.FromCentralConfig(cfg.Password)
			}

			hash, err := password.NewHasher(params).Hash(secret)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().String("password", "", "Password to hash (read from stdin when empty)")

	return cmd
}
