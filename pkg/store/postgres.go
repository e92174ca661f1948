package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NERVsystems/osmingest/pkg/listing"
)

// Schema creates the listings table if needed
const Schema = `CREATE TABLE IF NOT EXISTS listings (
	run_id      TEXT        NOT NULL,
	category    TEXT        NOT NULL,
	osm_id      TEXT        NOT NULL,
	name        TEXT        NOT NULL,
	payload     JSONB       NOT NULL,
	ingested_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS listings_category_idx ON listings (category)`

const deleteCategory = `DELETE FROM listings WHERE category = $1`

var listingColumns = []string{"run_id", "category", "osm_id", "name", "payload", "ingested_at"}

// DB is the subset of *pgxpool.Pool used by PostgresSink
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink replaces a category's rows in the listings table
type PostgresSink struct {
	db     DB
	runID  string
	now    func() time.Time
	logger *slog.Logger
}

// NewPostgresSink creates a sink tagging rows with runID
func NewPostgresSink(db DB, runID string, logger *slog.Logger) *PostgresSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSink{
		db:     db,
		runID:  runID,
		now:    time.Now,
		logger: logger.With("sink", "postgres"),
	}
}

// Connect opens a pool for databaseURL and verifies it with a ping
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the listings table
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}
	return nil
}

// Name implements Sink
func (s *PostgresSink) Name() string { return "postgres" }

// Write implements Sink. Deleting the old rows and copying the new ones
// happen in one transaction.
func (s *PostgresSink) Write(ctx context.Context, category listing.Category, records []listing.Record) error {
	rows := make([][]any, 0, len(records))
	ingestedAt := s.now().UTC()
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode %s record %s: %w", category, r.RecordID(), err)
		}
		rows = append(rows, []any{s.runID, string(category), r.RecordID(), r.DisplayName(), payload, ingestedAt})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.replace(ctx, tx, category, rows); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Warn("rollback failed", "category", category, "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", category, err)
	}
	s.logger.Debug("replaced listings", "category", category, "rows", len(rows))
	return nil
}

func (s *PostgresSink) replace(ctx context.Context, tx pgx.Tx, category listing.Category, rows [][]any) error {
	if _, err := tx.Exec(ctx, deleteCategory, string(category)); err != nil {
		return fmt.Errorf("failed to delete old %s rows: %w", category, err)
	}
	if len(rows) == 0 {
		return nil
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"listings"}, listingColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy %s rows: %w", category, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copied %d of %d %s rows", n, len(rows), category)
	}
	return nil
}
