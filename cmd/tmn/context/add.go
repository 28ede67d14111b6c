package contextcmd

import (
	"fmt"
	"path/filepath"

	"tmn/cmd/tmn/ui"
	"tmn/config"

	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var c config.Context

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if c.Host == "" && c.Descriptor == "" {
				return fmt.Errorf("at least one of --host or --descriptor is required")
			}
			if c.Descriptor != "" {
				abs, err := filepath.Abs(c.Descriptor)
				if err != nil {
					return fmt.Errorf("resolve descriptor path: %w", err)
				}
				c.Descriptor = abs
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Set(name, c); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("Context %s saved.", ui.Bold(name)))
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Host, "host", "", "Docker daemon address (unix://, tcp://, ssh://)")
	cmd.Flags().StringVar(&c.Descriptor, "descriptor", "", "Compose file describing the masternode")
	return cmd
}
