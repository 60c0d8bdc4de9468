package workflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Journal kinds accepted by OpenJournal.
const (
	JournalMemory = "memory"
	JournalSQLite = "sqlite"
)

// Journal persists workflow records on every transition.
type Journal interface {
	// Save upserts the record.
	Save(ctx context.Context, p Proposal) error

	// LoadAll returns every saved record in insertion order.
	LoadAll(ctx context.Context) ([]Proposal, error)

	Close() error
}

// OpenJournal returns the journal for kind. The path is used only by sqlite.
func OpenJournal(ctx context.Context, kind, path string) (Journal, error) {
	switch kind {
	case "", JournalMemory:
		return MemoryJournal{}, nil
	case JournalSQLite:
		return OpenSQLiteJournal(ctx, path)
	default:
		return nil, fmt.Errorf("unknown workflow journal %q", kind)
	}
}

// MemoryJournal keeps nothing; the table is the only copy.
type MemoryJournal struct{}

func (MemoryJournal) Save(context.Context, Proposal) error        { return nil }
func (MemoryJournal) LoadAll(context.Context) ([]Proposal, error) { return nil, nil }
func (MemoryJournal) Close() error                                { return nil }

// SQLiteJournal stores each workflow as one JSON row.
type SQLiteJournal struct {
	db *sql.DB
}

// OpenSQLiteJournal opens or creates the journal database at dbPath.
func OpenSQLiteJournal(ctx context.Context, dbPath string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory; %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal; %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode; %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations; %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Save upserts p.
func (j *SQLiteJournal) Save(ctx context.Context, p Proposal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow; %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO workflows (id, status, data_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			data_json = excluded.data_json,
			updated_at = excluded.updated_at`,
		p.ID, string(p.Status), string(data), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s; %w", p.ID, err)
	}
	return nil
}

// LoadAll returns every workflow in insertion order.
func (j *SQLiteJournal) LoadAll(ctx context.Context) ([]Proposal, error) {
	rows, err := j.db.QueryContext(ctx, "SELECT data_json FROM workflows ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows; %w", err)
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan workflow; %w", err)
		}
		var p Proposal
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to decode workflow; %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
