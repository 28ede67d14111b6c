// Command tmn provisions and supervises a masternode on a Docker host.
package main

import (
	"fmt"
	"os"

	"tmn/cmd/tmn/cmdutil"
	contextcmd "tmn/cmd/tmn/context"
	lifecyclecmd "tmn/cmd/tmn/lifecycle"
	statuscmd "tmn/cmd/tmn/status"
	topologycmd "tmn/cmd/tmn/topology"
	"tmn/cmd/tmn/ui"
	"tmn/internal/logging"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("%v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug         bool
		noInteraction bool
		opts          cmdutil.Options
	)

	root := &cobra.Command{
		Use:           "tmn",
		Short:         "Run a masternode on a Docker host",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level); err != nil {
				return err
			}
			ui.ConfigureInteraction(noInteraction)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&noInteraction, "no-interaction", false, "Disable spinners, prompts and colour")
	opts.Bind(root)

	root.AddCommand(lifecyclecmd.StartCmd(&opts))
	root.AddCommand(lifecyclecmd.StopCmd(&opts))
	root.AddCommand(statuscmd.Cmd(&opts))
	root.AddCommand(topologycmd.Cmd(&opts))
	root.AddCommand(contextcmd.Cmd())
	return root
}
