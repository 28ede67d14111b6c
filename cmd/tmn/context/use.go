package contextcmd

import (
	"fmt"

	"tmn/cmd/tmn/ui"
	"tmn/config"

	"github.com/spf13/cobra"
)

func useCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Use(args[0]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("Switched to context %s.", ui.Bold(args[0])))
			return nil
		},
	}
}

func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			name, c, ok := cfg.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.InfoMsg("No current context, using the docker environment."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.KeyValues("",
				ui.KV("Name", name),
				ui.KV("Host", c.Host),
				ui.KV("Descriptor", c.Descriptor),
			))
			return nil
		},
	}
}
