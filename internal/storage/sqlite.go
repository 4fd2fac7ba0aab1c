package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"longwrite/internal/knowledge"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			source TEXT,
			heading TEXT,
			content TEXT,
			embedding BLOB
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			topic TEXT,
			title TEXT,
			model TEXT,
			style TEXT,
			word_count INTEGER,
			body TEXT,
			sections JSON,
			created_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS sources (
			path TEXT PRIMARY KEY,
			hash TEXT,
			chunks INTEGER,
			ingested_at TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- VectorStore Implementation ---

func (s *SQLiteStore) Add(ctx context.Context, items []knowledge.VectorItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source, heading, content, embedding) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			heading=excluded.heading,
			content=excluded.content,
			embedding=excluded.embedding
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		blob, err := encodeVector(item.Embedding)
		if err != nil {
			return err
		}
		c := item.Chunk
		if _, err := stmt.ExecContext(ctx, c.ID, c.Source, c.Heading, c.Content, blob); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Search scores every stored chunk against the query. Exact search is fine
// for the corpus sizes a single writer ingests.
func (s *SQLiteStore) Search(ctx context.Context, queryVector []float32, topK int) ([]knowledge.VectorItem, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, source, heading, content, embedding FROM chunks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []knowledge.VectorItem
	for rows.Next() {
		var c knowledge.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Source, &c.Heading, &c.Content, &blob); err != nil {
			return nil, err
		}
		embedding, err := decodeVector(blob)
		if err != nil {
			continue
		}
		candidates = append(candidates, knowledge.VectorItem{
			Chunk:     c,
			Embedding: embedding,
			Score:     knowledge.CosineSimilarity(queryVector, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return knowledge.TopK(candidates, topK), nil
}

func (s *SQLiteStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM chunks WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteSource removes a source's chunks and forgets its recorded hash.
func (s *SQLiteStore) DeleteSource(ctx context.Context, source string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source = ?", source)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE path = ?", source); err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}

func (s *SQLiteStore) CountChunks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// SourceHash returns the content hash recorded for source, or "" if it was never ingested.
func (s *SQLiteStore) SourceHash(ctx context.Context, source string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM sources WHERE path = ?", source).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

func (s *SQLiteStore) RecordSource(ctx context.Context, source, hash string, chunks int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (path, hash, chunks, ingested_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash=excluded.hash,
			chunks=excluded.chunks,
			ingested_at=excluded.ingested_at
	`, source, hash, chunks, time.Now().UTC())
	return err
}

func encodeVector(v []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes", len(blob))
	}
	v := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// --- DocumentStore Implementation ---

// SaveDocument inserts doc and returns its ID. A missing ID gets a new UUID
// and a zero CreatedAt is set to now.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *DocumentRecord) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, topic, title, model, style, word_count, body, sections, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic=excluded.topic,
			title=excluded.title,
			model=excluded.model,
			style=excluded.style,
			word_count=excluded.word_count,
			body=excluded.body,
			sections=excluded.sections
	`, doc.ID, doc.Topic, doc.Title, doc.Model, doc.Style, doc.WordCount, doc.Body, sections, doc.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save document: %w", err)
	}
	return doc.ID, nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, topic, title, model, style, word_count, body, sections, created_at
		FROM documents WHERE id = ?`, id)

	var d DocumentRecord
	var sections []byte
	err := row.Scan(&d.ID, &d.Topic, &d.Title, &d.Model, &d.Style, &d.WordCount, &d.Body, &sections, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &d.Sections); err != nil {
			return nil, fmt.Errorf("failed to decode sections: %w", err)
		}
	}
	return &d, nil
}

// ListDocuments returns the newest documents first. limit <= 0 means all.
func (s *SQLiteStore) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, model, word_count, created_at
		FROM documents ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.Model, &d.WordCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
