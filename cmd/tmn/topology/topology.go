// Package topologycmd implements "tmn topology".
package topologycmd

import (
	"fmt"

	"tmn/cmd/tmn/cmdutil"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd returns "tmn topology", which prints the resolved declaration without
// contacting the daemon.
func Cmd(opts *cmdutil.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "topology",
		Short: "Print the volumes, networks and containers tmn manages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := cmdutil.Resolve(*opts)
			if err != nil {
				return err
			}
			topo, err := cmdutil.Topology(cmd.Context(), target)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(topo); err != nil {
				return fmt.Errorf("encode topology: %w", err)
			}
			return enc.Close()
		},
	}
}
