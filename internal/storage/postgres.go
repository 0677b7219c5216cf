package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/MereWhiplash/neurocat/internal/types"
)

const pgUniqueViolation = "23505"

// Postgres implements Storage using PostgreSQL with pgvector half vectors
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new Postgres storage
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	schema := `
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS embeddings (
			id SERIAL PRIMARY KEY,
			word TEXT NOT NULL UNIQUE,
			embedding halfvec NOT NULL
		);
	`
	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Insert(ctx context.Context, word string, embedding []float32) error {
	key := Key(word)
	vec := pgvector.NewHalfVector(embedding)

	_, err := p.pool.Exec(ctx,
		`INSERT INTO embeddings (word, embedding) VALUES ($1, $2)`,
		key, vec,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return duplicate(key)
		}
		return fmt.Errorf("failed to insert embedding: %w", err)
	}
	return nil
}

func (p *Postgres) Lookup(ctx context.Context, word string) ([]float32, bool, error) {
	var vec pgvector.HalfVector
	err := p.pool.QueryRow(ctx,
		`SELECT embedding FROM embeddings WHERE word = $1`, Key(word),
	).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lookup word: %w", err)
	}
	return vec.Slice(), true, nil
}

func (p *Postgres) Stats(ctx context.Context) (*types.StoreStats, error) {
	stats := &types.StoreStats{Driver: "postgres"}
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&stats.Words); err != nil {
		return nil, fmt.Errorf("failed to count words: %w", err)
	}

	if stats.Words > 0 {
		err := p.pool.QueryRow(ctx, `SELECT vector_dims(embedding) FROM embeddings LIMIT 1`).Scan(&stats.Dimension)
		if err != nil {
			return nil, fmt.Errorf("failed to read dimension: %w", err)
		}
	}

	var version string
	err := p.pool.QueryRow(ctx, `SELECT extversion FROM pg_extension WHERE extname = 'vector'`).Scan(&version)
	if err == nil {
		stats.Extension = "pgvector " + version
	}
	return stats, nil
}
