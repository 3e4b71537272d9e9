package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/0JaeminKim0/pipe-prpo/internal/ingest"
	"github.com/0JaeminKim0/pipe-prpo/internal/pipeline"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [files...]",
	Short: "Classify workbook files and report row counts without processing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, reports, err := ingest.LoadFiles(cmd.Context(), args)
		if err != nil {
			return eris.Wrap(err, "load files")
		}

		for _, r := range reports {
			switch {
			case r.Skipped && r.Error != "":
				fmt.Printf("%-40s unreadable: %s\n", r.Filename, r.Error)
			case r.Skipped:
				fmt.Printf("%-40s unknown shape, skipped\n", r.Filename)
			case r.Source != "":
				fmt.Printf("%-40s %s (%s), %d rows\n", r.Filename, r.Shape, r.Source, r.Rows)
			default:
				fmt.Printf("%-40s %s, %d rows\n", r.Filename, r.Shape, r.Rows)
			}
		}

		invalid := 0
		for _, rec := range ds.PR {
			if len(pipeline.Validate(rec)) > 0 {
				invalid++
			}
		}
		fmt.Printf("\nPR rows %d (missing required fields: %d), PO history rows %d\n",
			len(ds.PR), invalid, len(ds.PO))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
