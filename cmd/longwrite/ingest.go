package main

import (
	"fmt"
	"log"

	"longwrite/internal/crawler"
	"longwrite/internal/index"

	"github.com/spf13/cobra"
)

var ingestOpts struct {
	force      bool
	extensions []string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Split, embed and store reference material (files or directories)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		logger := newLogger()

		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		engine, err := initEngine(ctx, cfg, store, logger)
		if err != nil {
			log.Fatalf("Setup failed: %v\nCheck your config and API keys.", err)
		}

		idx := index.NewIndexer(crawler.NewCrawler(ingestOpts.extensions...), engine, store, logger).
			WithForce(ingestOpts.force)

		fmt.Printf("📂 Ingesting %d path(s)...\n", len(args))
		stats, err := idx.IngestPaths(ctx, args, func(path string, chunks int) {
			fmt.Printf("📥 %s: %d chunks\n", path, chunks)
		})
		if err != nil {
			log.Fatalf("Ingest failed: %v", err)
		}

		if stats.Skipped > 0 {
			fmt.Printf("⏭️  %d unchanged files skipped.\n", stats.Skipped)
		}
		count, _ := store.CountChunks(ctx)
		fmt.Printf("✅ Ingested %d files, %d chunks (%d in store). Database: %s\n", stats.Files, stats.Chunks, count, cfg.Storage.DBPath)
	},
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestOpts.force, "force", "f", false, "Re-ingest files even when unchanged")
	ingestCmd.Flags().StringSliceVar(&ingestOpts.extensions, "ext", nil, "File extensions to ingest (default .md,.markdown,.txt,.rst,.adoc)")
}
