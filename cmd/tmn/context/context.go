// Package contextcmd implements "tmn context", which manages named daemon
// contexts in the config file.
package contextcmd

import "github.com/spf13/cobra"

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage docker daemon contexts",
	}
	cmd.AddCommand(addCmd())
	cmd.AddCommand(listCmd())
	cmd.AddCommand(useCmd())
	cmd.AddCommand(currentCmd())
	cmd.AddCommand(removeCmd())
	return cmd
}
