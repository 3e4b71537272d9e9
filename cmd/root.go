package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0JaeminKim0/pipe-prpo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pipe-prpo",
	Short: "Purchase requisition triage agent",
	Long:  "Validates, classifies and prices purchase requisitions against PO history, routes PZAF materials to quotation and exports the review workbook.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
