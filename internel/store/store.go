package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"Framesync/pkg/modem"
	"Framesync/pkg/session"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrRunNotFound = errors.New("run not found")

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending schema migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	d := &DB{db}
	if err := d.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (db *DB) MigrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	// m is not closed: that would close the underlying connection
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Run is a persisted session result.
type Run struct {
	RunID      string
	Format     string
	Policy     string
	StartedAt  time.Time
	Statistics session.Statistics
	Records    []session.Record
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	RunID      string
	Format     string
	StartedAt  time.Time
	Total      int
	ValidCount int
}

func (db *DB) SaveRun(result *session.Result) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s := result.Statistics
	_, err = tx.Exec(`
		INSERT INTO runs (run_id, format, policy, started_at, symbols, skipped_bytes,
			total, valid_count, lost_count, lost_percentage, spacing_mean, spacing_stddev)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID.String(), result.Format.Name, result.Format.Policy.String(),
		result.StartedAt.UnixNano(), s.Symbols, s.SkippedBytes,
		s.Total, s.ValidCount, s.LostCount, s.LostPercentage, s.SpacingMean, s.SpacingStdDev)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", result.RunID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO candidates (run_id, idx, stream_offset, bits, valid) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range result.Records {
		if _, err := stmt.Exec(result.RunID.String(), r.Index, r.Offset, r.Bits.String(), r.Valid); err != nil {
			return fmt.Errorf("failed to insert candidate %d: %w", r.Index, err)
		}
	}
	return tx.Commit()
}

func (db *DB) LoadRun(runID string) (*Run, error) {
	run := &Run{RunID: runID}
	var startedAt int64
	s := &run.Statistics
	err := db.QueryRow(`
		SELECT format, policy, started_at, symbols, skipped_bytes, total, valid_count,
			lost_count, lost_percentage, spacing_mean, spacing_stddev
		FROM runs WHERE run_id = ?`, runID).Scan(
		&run.Format, &run.Policy, &startedAt, &s.Symbols, &s.SkippedBytes, &s.Total, &s.ValidCount,
		&s.LostCount, &s.LostPercentage, &s.SpacingMean, &s.SpacingStdDev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	run.StartedAt = time.Unix(0, startedAt)

	rows, err := db.Query(`SELECT idx, stream_offset, bits, valid FROM candidates WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Records = make([]session.Record, 0, s.Total)
	s.ValidIndices = make([]int, 0, s.ValidCount)
	for rows.Next() {
		var r session.Record
		var bits string
		if err := rows.Scan(&r.Index, &r.Offset, &bits, &r.Valid); err != nil {
			return nil, err
		}
		if r.Bits, err = modem.ParseBitSet(bits); err != nil {
			return nil, fmt.Errorf("candidate %d of run %s: %w", r.Index, runID, err)
		}
		if r.Valid {
			s.ValidIndices = append(s.ValidIndices, r.Index)
		}
		run.Records = append(run.Records, r)
	}
	return run, rows.Err()
}

// ListRuns returns the stored runs, most recent first.
func (db *DB) ListRuns() ([]RunSummary, error) {
	rows, err := db.Query(`SELECT run_id, format, started_at, total, valid_count FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var r RunSummary
		var startedAt int64
		if err := rows.Scan(&r.RunID, &r.Format, &startedAt, &r.Total, &r.ValidCount); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, startedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
