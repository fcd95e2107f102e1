package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   TEXT NOT NULL,
    taken_at     TEXT NOT NULL,
    wind_speed   REAL NOT NULL,
    wind_density REAL NOT NULL,
    kp_index     REAL NOT NULL,
    flare_class  TEXT NOT NULL,
    flare_flux   REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots (taken_at);
`

// Store persists telemetry history in SQLite. A lock file guards the
// database against concurrent writers from a second process.
type Store struct {
	db      *sql.DB
	lock    *flock.Flock
	session string
	path    string
}

// OpenStore initializes or connects to the history database at path
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("history database %s is in use by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:      db,
		lock:    lock,
		session: uuid.NewString(),
		path:    path,
	}, nil
}

// Session returns this run's session id, stamped onto every stored row
func (s *Store) Session() string {
	return s.session
}

// Append stores one snapshot
func (s *Store) Append(ctx context.Context, snap Snapshot) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO snapshots (
            session_id, taken_at, wind_speed, wind_density,
            kp_index, flare_class, flare_flux
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.session,
		snap.TakenAt.UTC().Format(time.RFC3339Nano),
		snap.WindSpeed,
		snap.WindDensity,
		snap.KpIndex,
		snap.FlareClass,
		snap.FlareFlux,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Recent returns up to n snapshots in chronological order
func (s *Store) Recent(ctx context.Context, n int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT taken_at, wind_speed, wind_density, kp_index, flare_class, flare_flux
         FROM snapshots ORDER BY taken_at DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var takenAt string
		if err := rows.Scan(&takenAt, &snap.WindSpeed, &snap.WindDensity,
			&snap.KpIndex, &snap.FlareClass, &snap.FlareFlux); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, takenAt); parseErr == nil {
			snap.TakenAt = ts
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	// Newest-first from the query; charts want oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Prune deletes snapshots older than the retention window
func (s *Store) Prune(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Close releases the database and the lock file
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}
