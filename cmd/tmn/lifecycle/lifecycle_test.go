package lifecyclecmd

import (
	"strings"
	"testing"

	"tmn/cmd/tmn/cmdutil"

	"github.com/spf13/cobra"
)

func TestCommands_Shape(t *testing.T) {
	opts := &cmdutil.Options{}
	for _, cmd := range []*cobra.Command{StartCmd(opts), StopCmd(opts)} {
		flag := cmd.Flags().Lookup("output")
		if flag == nil || flag.DefValue != cmdutil.OutputText || flag.Shorthand != "o" {
			t.Errorf("%s --output flag = %+v", cmd.Use, flag)
		}
	}
	if got := StartCmd(opts).Use; got != "start" {
		t.Errorf("StartCmd().Use = %q", got)
	}
	if got := StopCmd(opts).Use; got != "stop" {
		t.Errorf("StopCmd().Use = %q", got)
	}
}

func TestCommand_RejectsUnknownOutput(t *testing.T) {
	cmd := StartCmd(&cmdutil.Options{})
	cmd.SetArgs([]string{"--output", "yaml"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "yaml") {
		t.Fatalf("Execute() error = %v, want unsupported output", err)
	}
}

func TestCommand_RejectsArgs(t *testing.T) {
	cmd := StopCmd(&cmdutil.Options{})
	cmd.SetArgs([]string{"extra"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() with args error = nil")
	}
}
