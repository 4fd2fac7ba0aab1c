package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"longwrite/internal/config"
	"longwrite/internal/knowledge"
	"longwrite/internal/llm"
	"longwrite/internal/planner"
	"longwrite/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "longwrite",
		Short: "Long-form document generator grounded in your own material",
	}
	configPath string
	dbPath     string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite database (overrides storage.db_path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	return cfg
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// initStore opens the SQLite store at the configured path.
func initStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	return storage.NewSQLiteStore(cfg.Storage.DBPath)
}

func initEmbedder(ctx context.Context, cfg *config.Config) (knowledge.Embedder, error) {
	embedder, err := knowledge.NewEmbedder(ctx, knowledge.EmbedderOptions{
		Provider:  cfg.Embedding.Provider,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		BaseURL:   cfg.Embedding.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// initEngine builds the knowledge engine over the store with the configured embedder.
func initEngine(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, logger *slog.Logger) (*knowledge.Engine, error) {
	embedder, err := initEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return knowledge.NewEngine(embedder, store, logger).
		WithTopK(cfg.Writer.TopK).
		WithChunkChars(cfg.Writer.ChunkChars), nil
}

// initFileEngine indexes a single context file in memory so per-section
// retrieval searches that file instead of the store.
func initFileEngine(ctx context.Context, cfg *config.Config, path, content string, logger *slog.Logger) (*knowledge.Engine, error) {
	embedder, err := initEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	engine := knowledge.NewEngine(embedder, knowledge.NewMemoryIndex(), logger).
		WithTopK(cfg.Writer.TopK).
		WithChunkChars(cfg.Writer.ChunkChars)
	if _, err := engine.Ingest(ctx, path, content); err != nil {
		return nil, fmt.Errorf("failed to index context file: %w", err)
	}
	return engine, nil
}

func initClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	return llm.NewClient(ctx, llm.Options{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		OllamaBaseURL: cfg.LLM.OllamaBaseURL,
		TimeoutSecs:   cfg.LLM.Timeout,
	})
}

func initPlanner(cfg *config.Config, client llm.Client, logger *slog.Logger) *planner.Generator {
	return planner.NewGenerator(client, logger).WithLayout(cfg.Writer.Parts, cfg.Writer.ChaptersPerPart)
}

func warnConfig(cfg *config.Config) {
	for _, p := range cfg.Validate() {
		fmt.Printf("⚠️  Config: %s\n", p)
	}
}
