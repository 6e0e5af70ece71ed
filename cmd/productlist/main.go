package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/streamer-sales-catalog/internal/app"
	"github.com/samvad-hq/streamer-sales-catalog/internal/config"
	"github.com/samvad-hq/streamer-sales-catalog/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "productlist failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "productlist",
		Short:         "Fetch the streamer-sales product list",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.Int("current-page", 1, "page to fetch")
	flags.Int("page-size", 10, "products per page")
	flags.Bool("fetch-all", false, "walk every page starting at 1")
	flags.Int64("poll-interval", 0, "seconds between fetch passes; 0 fetches once")
	flags.Bool("cached", false, "print the stored snapshot instead of fetching")
	flags.String("api-base-url", "", "backend base url")
	flags.String("notifiers-file", "", "YAML/JSON notifier definitions")
	return cmd
}

func run(cmd *cobra.Command, out io.Writer) error {
	cfg, err := config.LoadWithFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("productlist starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := app.NewCatalog(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize catalog", "error", err)
		return err
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.ErrorObj("catalog close failed", "error", err)
		}
	}()

	if cfg.Cached {
		snap, found, err := catalog.Cached()
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		if !found {
			return errors.New("no snapshot stored for this page")
		}
		return writeJSON(out, snap)
	}

	if err := catalog.Run(ctx); err != nil {
		return fmt.Errorf("catalog run: %w", err)
	}
	return writeJSON(out, catalog.Result())
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
