package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MereWhiplash/neurocat/internal/types"
)

// SQLite implements Storage on a single SQLite file.
// The driver is mattn/go-sqlite3 with sqlite-vec in cgo builds and
// modernc.org/sqlite otherwise.
type SQLite struct {
	conn *sql.DB
}

func openSQLite(driver, path string) (*SQLite, error) {
	conn, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	conn.SetMaxOpenConns(1)

	s := &SQLite{conn: conn}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS embeddings (
			id INTEGER PRIMARY KEY,
			word TEXT NOT NULL,
			embedding BLOB NOT NULL,
			UNIQUE(word)
		);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Insert(ctx context.Context, word string, embedding []float32) error {
	key := Key(word)
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO embeddings (word, embedding) VALUES (?, ?)`,
		key, EncodeHalf(embedding),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicate(key)
		}
		return fmt.Errorf("failed to insert embedding: %w", err)
	}
	return nil
}

func (s *SQLite) Lookup(ctx context.Context, word string) ([]float32, bool, error) {
	var blob []byte
	err := s.conn.QueryRowContext(ctx,
		`SELECT embedding FROM embeddings WHERE word = ?`, Key(word),
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lookup word: %w", err)
	}

	emb, err := DecodeHalf(blob)
	if err != nil {
		return nil, false, err
	}
	return emb, true, nil
}

func (s *SQLite) Stats(ctx context.Context) (*types.StoreStats, error) {
	stats := &types.StoreStats{Driver: "sqlite"}
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&stats.Words); err != nil {
		return nil, fmt.Errorf("failed to count words: %w", err)
	}

	if stats.Words > 0 {
		var size int
		err := s.conn.QueryRowContext(ctx, `SELECT length(embedding) FROM embeddings LIMIT 1`).Scan(&size)
		if err != nil {
			return nil, fmt.Errorf("failed to read dimension: %w", err)
		}
		stats.Dimension = size / 2
	}

	stats.Extension = extensionVersion(ctx, s.conn)
	return stats, nil
}
