// Package snapshotstore persists per-actor GC snapshots to an append-only
// SQLite log. It never updates or deletes a row: a fresh snapshot is
// always a new insert, so a stale reader never observes a
// partially-overwritten record. cmd/uigc writes to it while driving a
// scenario and reads from it to feed internal/detector.
package snapshotstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dplyukhin/uigc/internal/gc"
)

// Store wraps a snapshot-log SQLite database.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if necessary) a snapshot store at dbPath and
// brings its schema up to date.
func Open(dbPath string) (*Store, error) {
	sqlDB, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// Append records a new snapshot for addr, tagged with seq (the caller's
// own monotonic counter for "how many snapshots have I taken of this
// actor", used only to order reads; it is not interpreted by this
// package). It never replaces or removes a prior snapshot for addr.
func (s *Store) Append(
	ctx context.Context, addr gc.Addr, seq uint64, snap gc.Snapshot,
) error {

	payload, err := marshalSnapshot(snap)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO snapshots (addr, seq, recorded_at, payload_json)
		VALUES (?, ?, ?, ?)
	`, string(addr), seq, time.Now().Unix(), string(payload))
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	log.Debugf("recorded snapshot addr=%s seq=%d", addr, seq)

	return nil
}

// LatestSnapshots returns the most recently recorded snapshot for every
// address that has ever appended one.
func (s *Store) LatestSnapshots(
	ctx context.Context,
) (map[gc.Addr]gc.Snapshot, error) {

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT addr, payload_json FROM snapshots s
		WHERE s.id = (
			SELECT id FROM snapshots s2
			WHERE s2.addr = s.addr
			ORDER BY s2.seq DESC, s2.id DESC
			LIMIT 1
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshots: %w", err)
	}
	defer rows.Close()

	result := make(map[gc.Addr]gc.Snapshot)
	for rows.Next() {
		var addr, payload string
		if err := rows.Scan(&addr, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		snap, err := unmarshalSnapshot([]byte(payload))
		if err != nil {
			return nil, err
		}
		result[gc.Addr(addr)] = snap
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// PutReceptionist marks addr as a permanently externally-owned actor:
// the detector must never treat it as a termination candidate. Inserting
// an address that's already registered is a no-op.
func (s *Store) PutReceptionist(ctx context.Context, addr gc.Addr) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT OR IGNORE INTO receptionists (addr, registered_at)
		VALUES (?, ?)
	`, string(addr), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put receptionist: %w", err)
	}
	return nil
}

// Receptionists returns the full set of registered receptionist
// addresses.
func (s *Store) Receptionists(
	ctx context.Context,
) (map[gc.Addr]struct{}, error) {

	rows, err := s.sqlDB.QueryContext(
		ctx, `SELECT addr FROM receptionists`,
	)
	if err != nil {
		return nil, fmt.Errorf("query receptionists: %w", err)
	}
	defer rows.Close()

	result := make(map[gc.Addr]struct{})
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan receptionist row: %w", err)
		}
		result[gc.Addr(addr)] = struct{}{}
	}

	return result, rows.Err()
}
