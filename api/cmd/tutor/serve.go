package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"study-buddy/api/internal/handle"
	"study-buddy/api/internal/httpserver"
	"study-buddy/api/internal/store"
)

var purgeAfter time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		selector, err := buildSelector(cfg)
		if err != nil {
			return err
		}
		if !cfg.HasLLM() {
			log.Printf("llm: no API key for %q, chat requests will fail", cfg.LLMProvider)
		}

		opts := []handle.Option{
			handle.WithSelector(selector),
			handle.WithTimeout(cfg.RequestTimeout),
		}
		if rec := buildOCR(cfg); rec != nil {
			opts = append(opts, handle.WithOCR(rec, cfg.OCRLangs))
		}

		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
			scans := store.NewScanRepo(db)
			opts = append(opts, handle.WithStorage(scans, store.NewProfileRepo(db), db))
			if purgeAfter > 0 {
				go purgeLoop(ctx, scans, purgeAfter)
			}
		}

		h := handle.New(buildEngines(cfg), opts...)
		return httpserver.Run(ctx, "0.0.0.0:"+cfg.Port, h.Routes())
	},
}

// purgeLoop deletes scans older than maxAge once an hour.
func purgeLoop(ctx context.Context, scans *store.ScanRepo, maxAge time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		n, err := scans.PurgeOlderThan(ctx, maxAge)
		if err != nil {
			log.Printf("scans: purge: %v", err)
		} else if n > 0 {
			log.Printf("scans: purged %d older than %v", n, maxAge)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func init() {
	serveCmd.Flags().DurationVar(&purgeAfter, "purge-after", 0, "delete saved scans older than this (0 keeps them)")
	rootCmd.AddCommand(serveCmd)
}
