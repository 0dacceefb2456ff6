package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denysvitali/asset-finder/internal/models"
	"github.com/denysvitali/asset-finder/pkg/classifier"
	"github.com/denysvitali/asset-finder/pkg/config"
	"github.com/denysvitali/asset-finder/pkg/report"
)

// scanCmd runs a single search and prints the grouped result
var scanCmd = &cobra.Command{
	Use:   "scan [keyword]",
	Short: "Search the assets directory once and print the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", report.FormatText, "Output format (text, json, yaml)")

	_ = viper.BindPFlag("scan.output", scanCmd.Flags().Lookup("output"))
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	keyword := cfg.Search.DefaultKeyword
	if len(args) == 1 && args[0] != "" {
		keyword = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.Timeout)
		defer cancel()
	}

	scanner := classifier.NewFromConfig(afero.NewOsFs(), cfg, logger)

	logger.Debugf("Scanning %s for %q", scanner.Root(), keyword)
	result, err := scanner.Search(ctx, keyword)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return report.Write(cmd.OutOrStdout(), viper.GetString("scan.output"), models.SearchResponse{
		Keyword:        keyword,
		Classification: result,
	})
}
