package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/carta/internal/core"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in.csv> <out.xlsx>",
		Short: "Convert a CSV export to a spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := core.ConvertCSV(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted %d rows (%s) to %s\n", res.Rows, strings.Join(res.Columns, ", "), args[1])
			return nil
		},
	}
}
