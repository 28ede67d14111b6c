package contextcmd

import (
	"fmt"

	"tmn/cmd/tmn/ui"
	"tmn/config"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List contexts",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfg.Contexts) == 0 {
				fmt.Fprintln(out, ui.InfoMsg("No contexts configured."))
				return nil
			}

			var rows [][]string
			for _, name := range cfg.Names() {
				c := cfg.Contexts[name]
				current := ""
				if name == cfg.CurrentContext {
					current = "*"
				}
				host := c.Host
				if host == "" {
					host = ui.Muted("(docker env)")
				}
				descriptor := c.Descriptor
				if descriptor == "" {
					descriptor = ui.Muted("(default)")
				}
				rows = append(rows, []string{current, name, host, descriptor})
			}
			fmt.Fprintln(out, ui.Table([]string{"", "NAME", "HOST", "DESCRIPTOR"}, rows))
			return nil
		},
	}
}
