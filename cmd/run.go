package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0JaeminKim0/pipe-prpo/internal/ingest"
	"github.com/0JaeminKim0/pipe-prpo/internal/model"
	"github.com/0JaeminKim0/pipe-prpo/internal/report"
)

var (
	runFiles []string
	runOut   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the triage pipeline over workbook files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths := append([]string{}, runFiles...)
		paths = append(paths, args...)
		if len(paths) == 0 {
			sample, err := ingest.ListSampleFiles(cfg.Server.SampleDir)
			if err != nil || len(sample) == 0 {
				return eris.New("no input files; pass paths or --file")
			}
			zap.L().Info("no input files given, using sample data", zap.String("dir", cfg.Server.SampleDir))
			paths = sample
		}

		ds, reports, err := ingest.LoadFiles(ctx, paths)
		if err != nil {
			return eris.Wrap(err, "load files")
		}
		for _, r := range reports {
			if r.Skipped {
				fmt.Printf("skipped  %s (%s)\n", r.Filename, r.Error)
				continue
			}
			fmt.Printf("loaded   %s: %s, %d rows\n", r.Filename, r.Shape, r.Rows)
		}

		agent, err := initAgent()
		if err != nil {
			return err
		}
		if err := agent.SetData(ds.PR, ds.PO); err != nil {
			return err
		}

		result, err := agent.Process(ctx)
		if err != nil {
			return eris.Wrap(err, "process")
		}

		printSummary(result)

		if runOut != "" {
			if err := report.WriteFile(result, runOut); err != nil {
				return err
			}
			fmt.Printf("\nworkbook written to %s\n", runOut)
		}
		return nil
	},
}

func printSummary(result *model.Result) {
	sum := result.Summary
	fmt.Printf("\nrun %s finished in %.1fs\n", result.RunID, sum.ElapsedSeconds)
	fmt.Printf("  quotations     %d (urgent %d / normal %d / flexible %d)\n",
		sum.Total, sum.Urgent, sum.Normal, sum.Flexible)
	fmt.Printf("  auto-complete  %d\n", sum.AutoComplete)
	fmt.Printf("  needs review   %d\n", sum.NeedsReview)
	fmt.Printf("  invalid PRs    %d (%d notifications queued)\n",
		len(result.InvalidPRs), len(result.Notifications))
	fmt.Printf("  external calls %d\n", sum.LLMCalls)
	for method, count := range sum.PriceMethods {
		fmt.Printf("  priced via %-15s %d\n", method, count)
	}
}

func init() {
	runCmd.Flags().StringSliceVar(&runFiles, "file", nil, "workbook file to ingest (repeatable)")
	runCmd.Flags().StringVar(&runOut, "out", "", "write the review workbook to this path")
	rootCmd.AddCommand(runCmd)
}
