// Command ic compiles a single FL source file to a native executable via
// a generated C translation unit.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/icflang/ic/internal/driver"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ic <source_file>",
		Short:   "Compile an FL source file to a native executable",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			icHome := env.Str("IC_HOME", "")
			if icHome == "" {
				return errMissingICHome
			}
			return driver.Compile(args[0], icHome)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}

var errMissingICHome = icHomeError{}

type icHomeError struct{}

func (icHomeError) Error() string {
	return "IC_HOME must be set to the root of the installed IC runtime"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
