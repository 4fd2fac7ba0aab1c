package index

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"longwrite/internal/crawler"

	"github.com/zeebo/blake3"
)

// ChunkIngester turns one document into indexed chunks.
type ChunkIngester interface {
	Ingest(ctx context.Context, source, content string) (int, error)
}

// SourceStore remembers what was ingested from each source.
type SourceStore interface {
	SourceHash(ctx context.Context, source string) (string, error)
	RecordSource(ctx context.Context, source, hash string, chunks int) error
	DeleteSource(ctx context.Context, source string) (int, error)
}

// Stats summarises one ingestion run.
type Stats struct {
	Files     int
	Skipped   int
	Chunks    int
	Replaced  int
	Unchanged []string
}

// Indexer walks paths and ingests new or changed documents. Files whose
// content hash matches the last run are skipped.
type Indexer struct {
	crawler *crawler.Crawler
	engine  ChunkIngester
	sources SourceStore
	logger  *slog.Logger
	force   bool
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler, engine ChunkIngester, sources SourceStore, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indexer{crawler: c, engine: engine, sources: sources, logger: logger}
}

// WithForce re-ingests every file regardless of its recorded hash.
func (i *Indexer) WithForce(force bool) *Indexer {
	i.force = force
	return i
}

// IngestPaths ingests every accepted file under paths.
func (i *Indexer) IngestPaths(ctx context.Context, paths []string, onFile func(path string, chunks int)) (Stats, error) {
	var stats Stats
	for _, root := range paths {
		err := i.crawler.Scan(root, func(path, content string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, skipped, err := i.ingestFile(ctx, path, content, &stats)
			if err != nil {
				return err
			}
			if skipped {
				stats.Skipped++
				stats.Unchanged = append(stats.Unchanged, path)
				return nil
			}
			stats.Files++
			stats.Chunks += n
			if onFile != nil {
				onFile(path, n)
			}
			return nil
		})
		if err != nil {
			return stats, fmt.Errorf("ingest %s: %w", root, err)
		}
	}
	return stats, nil
}

func (i *Indexer) ingestFile(ctx context.Context, path, content string, stats *Stats) (int, bool, error) {
	hash := ContentHash(content)
	if !i.force {
		prev, err := i.sources.SourceHash(ctx, path)
		if err != nil {
			return 0, false, err
		}
		if prev == hash {
			i.logger.Debug("source unchanged", "path", path)
			return 0, true, nil
		}
	}

	removed, err := i.sources.DeleteSource(ctx, path)
	if err != nil {
		return 0, false, fmt.Errorf("clear %s: %w", path, err)
	}
	stats.Replaced += removed

	n, err := i.engine.Ingest(ctx, path, content)
	if err != nil {
		return 0, false, err
	}
	if err := i.sources.RecordSource(ctx, path, hash, n); err != nil {
		return 0, false, fmt.Errorf("record %s: %w", path, err)
	}
	return n, false, nil
}

// ContentHash is the blake3 digest of a document's content.
func ContentHash(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
