package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/carta/internal/core"
)

func newCheckCmd() *cobra.Command {
	var (
		required []string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Load and validate a dataset file",
		Long: `Reads the file exactly as the server would and prints row counts and
every rejected row. Missing columns or an unreadable file exit non-zero.
With --strict, rejected rows are an error too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := core.NewFileLoader(args[0]).Load(cmd.Context())
			if err != nil {
				return err
			}
			result, err := core.ValidateRows(table, core.CanonicalColumns(required))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:        %s\n", args[0])
			fmt.Fprintf(out, "columns:     %s\n", strings.Join(table.Header, ", "))
			fmt.Fprintf(out, "fingerprint: %s\n", table.Fingerprint)
			fmt.Fprintf(out, "rows: %d  accepted: %d  skipped: %d  rejected: %d\n",
				result.TotalRows, len(result.Records), result.Skipped, len(result.Rejections))
			for _, rej := range result.Rejections {
				fmt.Fprintf(out, "  %s\n", rej.Error())
			}

			if strict && len(result.Rejections) > 0 {
				return fmt.Errorf("%d rows rejected", len(result.Rejections))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&required, "required", nil, "Required columns (default: the built-in set)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any row is rejected")
	return cmd
}
