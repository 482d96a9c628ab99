package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/carta/internal/core"
)

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample <file>",
		Short: "Write the example dataset (.xlsx or .csv)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.WriteSample(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sample records to %s\n", len(core.SampleRows()), args[0])
			return nil
		},
	}
}
