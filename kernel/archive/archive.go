// Package archive stores canonical snapshots in SQLite, keyed by run id and
// tick. It is the export side of the kernel: the kernel never touches disk,
// the driver hands finished snapshots here.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/inference-sim/detkernel/kernel/snapshot"
)

// ErrNotFound is returned by Load when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// Record is one archived snapshot.
type Record struct {
	RunID  string
	Tick   int64
	Digest string
	Data   []byte
}

// Archive is a SQLite-backed snapshot store. Safe for concurrent use: every
// statement goes through a single connection.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at dsn. Use ":memory:" for a
// throwaway archive.
func Open(ctx context.Context, dsn string) (*Archive, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// One connection: ":memory:" databases are per-connection, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return a, nil
}

func (a *Archive) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		digest TEXT NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_digest ON snapshots(digest);
	`
	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores data for (runID, tick), replacing any earlier row. digest must
// be the snapshot digest of data.
func (a *Archive) Save(ctx context.Context, runID string, tick int64, digest string, data []byte) error {
	if got := snapshot.Digest(data); got != digest {
		return fmt.Errorf("archive %s@%d: digest %s does not match data (%s)", runID, tick, digest, got)
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (run_id, tick, digest, data) VALUES (?, ?, ?, ?)`,
		runID, tick, digest, data)
	if err != nil {
		return fmt.Errorf("archive %s@%d: %w", runID, tick, err)
	}
	logrus.Debugf("archive: saved %s@%d (%d bytes)", runID, tick, len(data))
	return nil
}

// Load returns the snapshot stored for (runID, tick) after verifying its
// digest.
func (a *Archive) Load(ctx context.Context, runID string, tick int64) (*Record, error) {
	rec := Record{RunID: runID, Tick: tick}
	err := a.db.QueryRowContext(ctx,
		`SELECT digest, data FROM snapshots WHERE run_id = ? AND tick = ?`, runID, tick,
	).Scan(&rec.Digest, &rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s@%d: %w", runID, tick, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s@%d: %w", runID, tick, err)
	}
	if got := snapshot.Digest(rec.Data); got != rec.Digest {
		return nil, fmt.Errorf("load %s@%d: %w: digest %s, data hashes to %s",
			runID, tick, snapshot.ErrCorrupt, rec.Digest, got)
	}
	return &rec, nil
}

// List returns every snapshot of runID ordered by tick.
func (a *Archive) List(ctx context.Context, runID string) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT tick, digest, data FROM snapshots WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec := Record{RunID: runID}
		if err := rows.Scan(&rec.Tick, &rec.Digest, &rec.Data); err != nil {
			return nil, fmt.Errorf("list %s: %w", runID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Runs returns the distinct run ids in ascending order.
func (a *Archive) Runs(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT DISTINCT run_id FROM snapshots ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
