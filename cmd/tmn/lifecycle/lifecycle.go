// Package lifecyclecmd implements "tmn start" and "tmn stop".
package lifecyclecmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tmn"
	"tmn/cmd/tmn/cmdutil"
	"tmn/cmd/tmn/ui"
	"tmn/internal/masternode"
	"tmn/internal/telemetry"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// StartCmd returns "tmn start". opts points at the root persistent flags.
func StartCmd(opts *cmdutil.Options) *cobra.Command {
	return command(opts, operation{
		name:    "start",
		short:   "Create missing resources and start every masternode container",
		done:    "Masternode started.",
		plan:    telemetry.StartPlan,
		execute: (*masternode.Masternode).Start,
	})
}

// StopCmd returns "tmn stop".
func StopCmd(opts *cmdutil.Options) *cobra.Command {
	return command(opts, operation{
		name:    "stop",
		short:   "Stop every existing masternode container",
		done:    "Masternode stopped.",
		plan:    telemetry.StopPlan,
		execute: (*masternode.Masternode).Stop,
	})
}

type operation struct {
	name    string
	short   string
	done    string
	plan    func(tmn.Topology) telemetry.Plan
	execute func(*masternode.Masternode, context.Context) error
}

// report is the --output json document.
type report struct {
	Operation string             `json:"operation"`
	OK        bool               `json:"ok"`
	Error     string             `json:"error,omitempty"`
	Events    []masternode.Event `json:"events"`
}

func command(opts *cmdutil.Options, op operation) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   op.name,
		Short: op.short,
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			return cmdutil.ValidateOutput(output)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var session *cmdutil.Session
			err := ui.RunWithSpinner(cmd.Context(), "Connecting to docker", func(ctx context.Context) error {
				var err error
				session, err = cmdutil.Open(ctx, *opts)
				return err
			})
			if err != nil {
				return err
			}
			defer session.Close()

			return run(cmd.Context(), session, op, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", cmdutil.OutputText, "Output format: text or json")
	return cmd
}

func run(ctx context.Context, session *cmdutil.Session, op operation, output string) error {
	var rec masternode.Recorder
	notifiers := []masternode.Notifier{&rec}

	var tracer trace.Tracer = noop.NewTracerProvider().Tracer("tmn")
	var progress *ui.Progress
	if output == cmdutil.OutputText {
		progress = ui.NewProgress()
		defer progress.Close()
		tracer = progress.Tracer("tmn")
	}

	spans, err := telemetry.Begin(ctx, tracer, op.name, op.plan(session.Topology))
	if err != nil {
		return err
	}
	m, err := masternode.New(session.Runtime, session.Topology,
		masternode.WithNotifier(masternode.Multi(append(notifiers, spans)...)))
	if err != nil {
		spans.End(err)
		return err
	}

	err = op.execute(m, spans.Context())
	spans.End(err)

	if output == cmdutil.OutputJSON {
		doc := report{Operation: op.name, OK: err == nil, Events: rec.Events}
		if err != nil {
			doc.Error = err.Error()
		}
		if werr := cmdutil.WriteJSON(os.Stdout, doc); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	if err != nil {
		return err
	}
	progress.Close()
	fmt.Println(ui.SuccessMsg("%s", op.done))
	return nil
}
