package savegame

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS save_slots (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	saved_at       INTEGER NOT NULL,
	format_version INTEGER NOT NULL,
	journey        TEXT NOT NULL
)`

// SQLiteStore keeps one row per slot with the journey as a JSON column.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database at path. ":memory:" keeps the
// database in process.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps in-memory databases shared and serialises
	// writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(createSlotsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create save_slots table: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, slot Slot) (Slot, error) {
	slot, err := prepare(slot, s.now())
	if err != nil {
		return Slot{}, err
	}
	doc, err := json.Marshal(slot.Journey)
	if err != nil {
		return Slot{}, fmt.Errorf("encode journey: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO save_slots (id, name, saved_at, format_version, journey)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			saved_at = excluded.saved_at,
			format_version = excluded.format_version,
			journey = excluded.journey
	`, slot.ID, slot.Name, slot.SavedAt.UnixNano(), slot.FormatVersion, string(doc))
	if err != nil {
		return Slot{}, fmt.Errorf("save slot %s: %w", slot.ID, err)
	}
	return slot, nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (Slot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, saved_at, format_version, journey
		FROM save_slots
		WHERE id = ?
	`, id)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, ErrNotFound
	}
	if err != nil {
		return Slot{}, err
	}
	return slot, checkVersion(slot)
}

func (s *SQLiteStore) List(ctx context.Context) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, saved_at, format_version, journey
		FROM save_slots
		ORDER BY saved_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list save slots: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM save_slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (Slot, error) {
	var (
		slot    Slot
		savedAt int64
		doc     string
	)
	if err := row.Scan(&slot.ID, &slot.Name, &savedAt, &slot.FormatVersion, &doc); err != nil {
		return Slot{}, err
	}
	slot.SavedAt = time.Unix(0, savedAt).UTC()
	slot.Journey = &trail.JourneyState{}
	if err := json.Unmarshal([]byte(doc), slot.Journey); err != nil {
		return Slot{}, fmt.Errorf("decode journey for slot %s: %w", slot.ID, err)
	}
	return slot, nil
}
