package contextcmd

import (
	"fmt"

	"tmn/cmd/tmn/ui"
	"tmn/config"

	"github.com/spf13/cobra"
)

func removeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Short:   "Remove a context",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := cfg.Get(name); err != nil {
				return err
			}

			if !yes {
				confirmed, err := ui.Confirm(fmt.Sprintf("Remove context %s?", ui.Bold(name)), "use --yes to skip")
				if err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}

			if err := cfg.Remove(name); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("Context %s removed.", ui.Bold(name)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}
