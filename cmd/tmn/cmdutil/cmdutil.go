// Package cmdutil holds the connection and topology plumbing shared by tmn
// commands.
package cmdutil

import (
	"time"

	"github.com/spf13/cobra"
)

const (
	envHost    = "TMN_DOCKER_HOST"
	envContext = "TMN_CONTEXT"
)

// Options are the root persistent flags.
type Options struct {
	Host       string
	Context    string
	Descriptor string
	Wait       time.Duration
}

// Bind registers the flags on cmd.
func (o *Options) Bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.Host, "host", "", "Docker daemon address (e.g. unix:///var/run/docker.sock, tcp://10.0.0.5:2376)")
	f.StringVar(&o.Context, "context", "", "Context name to use")
	f.StringVarP(&o.Descriptor, "descriptor", "f", "", "Compose file describing the masternode instead of the default topology")
	f.DurationVar(&o.Wait, "wait", 0, "Wait up to this long for the daemon to become reachable")
}
