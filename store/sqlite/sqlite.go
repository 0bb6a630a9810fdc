/*
Package sqlite provides the SQLite-backed trip persistence store.

PURPOSE:
  Persists the data the compliance engine consumes: the traveler's stay
  history, their registered special statuses, and their profile. The
  engine itself stays pure - it receives these rows as arguments and
  never touches the database.

INTERFACES:
  The api package depends on this store directly; the engine does not.

INGESTION RULES:
  - A stay with exit before entry is rejected with ErrMalformedStay.
    Malformed rows must never reach the accounting functions.
  - Closing a stay fills its exit date; it is the only permitted
    mutation. Deletion exists for explicit corrections only.

KEY TABLES:
  stays:             Border-crossing records (entry/exit per country)
  special_statuses:  User-registered policy overrides (config as JSON)
  profile:           Single-row traveler profile (nationality)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/dinotrack.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - compliance/types.go: StayRecord, the row's domain shape
  - api/handlers.go: the store's only consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/taco0513/dinotrack/compliance"
)

// Store persists stays, special statuses, and the traveler profile.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Stays (border-crossing records)
	CREATE TABLE IF NOT EXISTS stays (
		id TEXT PRIMARY KEY,
		country_code TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		exit_date TEXT,
		purpose TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_stays_country
		ON stays(country_code, entry_date);
	CREATE INDEX IF NOT EXISTS idx_stays_entry
		ON stays(entry_date);

	-- Special statuses (user-registered policy overrides)
	CREATE TABLE IF NOT EXISTS special_statuses (
		id TEXT PRIMARY KEY,
		country_code TEXT NOT NULL,
		label TEXT,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_special_statuses_country
		ON special_statuses(country_code);

	-- Profile (single row, id fixed at 1)
	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		nationality TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STAYS
// =============================================================================

// SaveStay inserts a stay record. Malformed records (exit before entry)
// are rejected so they can never reach the accounting functions.
func (s *Store) SaveStay(ctx context.Context, stay compliance.StayRecord) error {
	if !stay.WellFormed() {
		return &compliance.MalformedStayError{
			CountryCode: stay.CountryCode,
			Entry:       stay.EntryDate,
			Exit:        *stay.ExitDate,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO stays (id, country_code, entry_date, exit_date, purpose, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		stay.ID,
		stay.CountryCode,
		stay.EntryDate.String(),
		exitString(stay.ExitDate),
		stay.Purpose,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetStay fetches a single stay; nil when not found.
func (s *Store) GetStay(ctx context.Context, id string) (*compliance.StayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, country_code, entry_date, exit_date, purpose FROM stays WHERE id = ?`, id)
	stay, err := scanStay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

// ListStays returns all stays ordered by entry date.
func (s *Store) ListStays(ctx context.Context) ([]compliance.StayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, country_code, entry_date, exit_date, purpose FROM stays ORDER BY entry_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stays []compliance.StayRecord
	for rows.Next() {
		stay, err := scanStay(rows)
		if err != nil {
			return nil, err
		}
		stays = append(stays, stay)
	}
	return stays, rows.Err()
}

// CloseStay fills the exit date of an ongoing stay - the only permitted
// mutation of a stay record.
func (s *Store) CloseStay(ctx context.Context, id string, exitDate compliance.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stay, err := s.getStayLocked(ctx, id)
	if err != nil {
		return err
	}
	if stay == nil {
		return compliance.ErrStayNotFound
	}
	if exitDate.Before(stay.EntryDate) {
		return &compliance.MalformedStayError{
			CountryCode: stay.CountryCode,
			Entry:       stay.EntryDate,
			Exit:        exitDate,
		}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE stays SET exit_date = ? WHERE id = ?`, exitDate.String(), id)
	return err
}

// DeleteStay removes a stay. Stays are never deleted as part of normal
// accounting; this exists for explicit corrections.
func (s *Store) DeleteStay(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM stays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return compliance.ErrStayNotFound
	}
	return nil
}

func (s *Store) getStayLocked(ctx context.Context, id string) (*compliance.StayRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, country_code, entry_date, exit_date, purpose FROM stays WHERE id = ?`, id)
	stay, err := scanStay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStay(r rowScanner) (compliance.StayRecord, error) {
	var stay compliance.StayRecord
	var entry string
	var exit sql.NullString
	var purpose sql.NullString

	if err := r.Scan(&stay.ID, &stay.CountryCode, &entry, &exit, &purpose); err != nil {
		return compliance.StayRecord{}, err
	}

	entryDate, err := compliance.ParseDate(entry)
	if err != nil {
		return compliance.StayRecord{}, err
	}
	stay.EntryDate = entryDate

	if exit.Valid && exit.String != "" {
		exitDate, err := compliance.ParseDate(exit.String)
		if err != nil {
			return compliance.StayRecord{}, err
		}
		stay.ExitDate = &exitDate
	}
	stay.Purpose = purpose.String
	return stay, nil
}

func exitString(d *compliance.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// =============================================================================
// SPECIAL STATUSES
// =============================================================================

// SpecialStatusRecord stores a user-registered policy override. The
// policy itself lives in ConfigJSON (policy.CustomPolicyJSON); the api
// layer parses it with the policy factory.
type SpecialStatusRecord struct {
	ID          string
	CountryCode string
	Label       string
	ConfigJSON  string
	CreatedAt   time.Time
}

// SaveSpecialStatus inserts a special status record.
func (s *Store) SaveSpecialStatus(ctx context.Context, rec SpecialStatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO special_statuses (id, country_code, label, config_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.CountryCode, rec.Label, rec.ConfigJSON,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// ListSpecialStatuses returns all registered special statuses.
func (s *Store) ListSpecialStatuses(ctx context.Context) ([]SpecialStatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, country_code, label, config_json, created_at FROM special_statuses ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SpecialStatusRecord
	for rows.Next() {
		var rec SpecialStatusRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.CountryCode, &rec.Label, &rec.ConfigJSON, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteSpecialStatus removes a special status.
func (s *Store) DeleteSpecialStatus(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM special_statuses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile is the single traveler profile this deployment tracks.
type Profile struct {
	Nationality string
	UpdatedAt   time.Time
}

// GetProfile returns the profile; nil when never saved.
func (s *Store) GetProfile(ctx context.Context) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Profile
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT nationality, updated_at FROM profile WHERE id = 1`).Scan(&p.Nationality, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// SaveProfile upserts the profile row.
func (s *Store) SaveProfile(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO profile (id, nationality, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET nationality = excluded.nationality, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		p.Nationality, time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// RESET (dev/demo only)
// =============================================================================

// Reset clears all data. Used by the scenario loaders.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"stays", "special_statuses", "profile"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
