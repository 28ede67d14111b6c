// Package statuscmd implements "tmn status".
package statuscmd

import (
	"context"
	"fmt"
	"os"

	"tmn"
	"tmn/cmd/tmn/cmdutil"
	"tmn/cmd/tmn/ui"
	"tmn/internal/masternode"

	"github.com/spf13/cobra"
)

// Cmd returns "tmn status". opts points at the root persistent flags.
func Cmd(opts *cmdutil.Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of every masternode container",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			return cmdutil.ValidateOutput(output)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var records []tmn.StatusRecord
			err := ui.RunWithSpinner(cmd.Context(), "Inspecting containers", func(ctx context.Context) error {
				session, err := cmdutil.Open(ctx, *opts)
				if err != nil {
					return err
				}
				defer session.Close()

				m, err := masternode.New(session.Runtime, session.Topology)
				if err != nil {
					return err
				}
				records, err = m.Status(ctx)
				return err
			})
			if err != nil {
				return err
			}

			if output == cmdutil.OutputJSON {
				return cmdutil.WriteJSON(os.Stdout, records)
			}
			fmt.Println(ui.StatusTable(records))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", cmdutil.OutputText, "Output format: text or json")
	return cmd
}
