package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/propscout/propscout-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.propscout/data/propscout.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".propscout", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "propscout.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AreaStatsCache returns an AreaStatsCache interface backed by this store.
func (s *Store) AreaStatsCache() driven.AreaStatsCache {
	return &areaStatsCache{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Area Stats Cache ====================

// areaStatsCache implements driven.AreaStatsCache.
type areaStatsCache struct {
	store *Store
}

var _ driven.AreaStatsCache = (*areaStatsCache)(nil)

// Get returns the cached stats for an outcode.
func (s *areaStatsCache) Get(ctx context.Context, outcode string) (driven.AreaStats, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT outcode, avg_price, avg_rent, fetched_at
		FROM area_stats WHERE outcode = ?
	`, outcode)

	var stats driven.AreaStats
	var avgPrice, avgRent sql.NullFloat64
	var fetchedAt string
	if err := row.Scan(&stats.Outcode, &avgPrice, &avgRent, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return driven.AreaStats{}, domain.ErrNotFound
		}
		return driven.AreaStats{}, fmt.Errorf("scanning area stats: %w", err)
	}

	if avgPrice.Valid {
		stats.AvgPrice = &avgPrice.Float64
	}
	if avgRent.Valid {
		stats.AvgRent = &avgRent.Float64
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		stats.FetchedAt = t
	}

	return stats, nil
}

// Put stores stats for an outcode, replacing any previous entry.
func (s *areaStatsCache) Put(ctx context.Context, stats driven.AreaStats) error {
	if stats.Outcode == "" {
		return fmt.Errorf("saving area stats: empty outcode")
	}

	fetchedAt := stats.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO area_stats (outcode, avg_price, avg_rent, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(outcode) DO UPDATE SET
			avg_price = excluded.avg_price,
			avg_rent = excluded.avg_rent,
			fetched_at = excluded.fetched_at
	`, stats.Outcode, nullFloat(stats.AvgPrice), nullFloat(stats.AvgRent),
		fetchedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving area stats: %w", err)
	}
	return nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// RecordOutcomes stores the outcomes of one orchestrator run.
func (s *runStore) RecordOutcomes(ctx context.Context, outcomes []domain.SourceRunOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_outcomes
			(run_id, source_id, location, radius, round, status, listings, elapsed_ms, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err := stmt.ExecContext(ctx, o.RunID, o.SourceID, o.Location,
			o.Radius, o.Round, string(o.Status), o.Listings,
			o.Elapsed.Milliseconds(), nullString(o.Err),
			o.StartedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("recording outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RunOutcomes returns all outcomes recorded for a run ID.
func (s *runStore) RunOutcomes(ctx context.Context, runID string) ([]domain.SourceRunOutcome, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, source_id, location, radius, round, status, listings, elapsed_ms, error, started_at
		FROM run_outcomes
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []domain.SourceRunOutcome //nolint:prealloc // size unknown from query
	for rows.Next() {
		var o domain.SourceRunOutcome
		var status, startedAt string
		var elapsedMS int64
		var errMsg sql.NullString
		if err := rows.Scan(&o.RunID, &o.SourceID, &o.Location, &o.Radius,
			&o.Round, &status, &o.Listings, &elapsedMS, &errMsg, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning run outcome: %w", err)
		}

		o.Status = domain.UnitStatus(status)
		o.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if errMsg.Valid {
			o.Err = errMsg.String
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			o.StartedAt = t
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run outcomes: %w", err)
	}

	return outcomes, nil
}

// PruneRuns removes outcome history beyond the most recent 'keep' runs.
func (s *runStore) PruneRuns(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM run_outcomes
		WHERE run_id NOT IN (
			SELECT run_id FROM (
				SELECT run_id, MAX(started_at) AS latest
				FROM run_outcomes
				GROUP BY run_id
				ORDER BY latest DESC
				LIMIT ?
			)
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning run outcomes: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// nullFloat returns nil for nil pointers, otherwise the value.
func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
