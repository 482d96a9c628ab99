// Command cartactl is the operator tool for dataset files: it validates a
// file the way the server would, writes the example dataset, and converts
// CSV exports to spreadsheets.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/carta/internal/core"
	"github.com/JonMunkholm/carta/internal/logging"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "cartactl",
		Short:         "Dataset tooling for the Carta Contemplada API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(logLevel, "text")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newCheckCmd(), newSampleCmd(), newConvertCmd())
	return root
}

// reportError prints err and, for known dataset problems, the operator
// hint with its support code.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, "hint:", core.FormatUserError(err))
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
