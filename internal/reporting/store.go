package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/devdocai/piiguard/internal/privacy"
)

// Store persists scan reports to PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxConnections  int           `yaml:"max_connections" mapstructure:"max_connections"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

const schema = `
CREATE TABLE IF NOT EXISTS scan_reports (
	id BIGSERIAL PRIMARY KEY,
	request_id TEXT NOT NULL,
	document_bytes INTEGER NOT NULL,
	has_pii BOOLEAN NOT NULL,
	match_count INTEGER NOT NULL,
	categories JSONB NOT NULL DEFAULT '{}',
	frameworks JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_scan_reports_created_at ON scan_reports (created_at);
`

// NewStore creates a new report store instance
func NewStore(config *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxConnections)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Report store initialized successfully",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_connections", config.MaxConnections))

	return store, nil
}

// initialize checks the database connection and ensures the schema
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Record persists the outcome of one scan. Only the metadata projection is
// accepted here, so raw matches can never reach the database by mistake.
func (s *Store) Record(ctx context.Context, requestID string, documentBytes int, meta *privacy.ScanMetadata) error {
	categories, err := json.Marshal(meta.Counts)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	frameworks, err := json.Marshal(meta.Frameworks)
	if err != nil {
		return fmt.Errorf("failed to marshal frameworks: %w", err)
	}

	matchCount := 0
	for _, n := range meta.Counts {
		matchCount += n
	}

	query := `
		INSERT INTO scan_reports (request_id, document_bytes, has_pii, match_count, categories, frameworks)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := s.db.ExecContext(ctx, query, requestID, documentBytes, meta.HasPII, matchCount, categories, frameworks); err != nil {
		s.logger.Error("Failed to record scan report",
			zap.Error(err),
			zap.String("request_id", requestID))
		return fmt.Errorf("failed to record scan report: %w", err)
	}

	return nil
}

// Summarize aggregates reports recorded since the given time.
func (s *Store) Summarize(ctx context.Context, since time.Time) (*Summary, error) {
	query := `
		SELECT
			COUNT(*) AS total_scans,
			COUNT(*) FILTER (WHERE has_pii) AS scans_with_pii,
			COALESCE(SUM(match_count), 0) AS total_matches,
			COALESCE(AVG(document_bytes) / 1024.0, 0) AS avg_document_kb
		FROM scan_reports
		WHERE created_at >= $1`

	var summary Summary
	if err := s.db.GetContext(ctx, &summary, query, since); err != nil {
		return nil, fmt.Errorf("failed to summarize reports: %w", err)
	}
	return &summary, nil
}

// CategoryTotals returns the per-category match totals since the given time.
func (s *Store) CategoryTotals(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := `
		SELECT kv.key AS category, SUM(kv.value::bigint) AS total
		FROM scan_reports, jsonb_each_text(categories) AS kv
		WHERE created_at >= $1
		GROUP BY kv.key`

	rows, err := s.db.QueryxContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals[category] = total
	}
	return totals, rows.Err()
}

// Close releases the database connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// maskDatabaseURL hides credentials in a database URL for logging
func maskDatabaseURL(databaseURL string) string {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "[invalid URL]"
	}
	if parsed.User != nil {
		parsed.User = url.User("***")
	}
	return parsed.String()
}
