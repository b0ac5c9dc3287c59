// Package telemetry stores control events in a local SQLite database
// for later analysis. Storage is opt-in and failures must never stall
// the tick loop.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sweeney/metronome/internal/engine"
	"github.com/sweeney/metronome/internal/logger"
)

const defaultDirPerm = 0o755

// Record is a single stored control event.
type Record struct {
	Timestamp     time.Time
	Event         string
	BPM           int
	Running       bool
	Mode          string
	TimeSignature string
	Accent        bool
	Visual        bool
}

// RecordFromEvent builds a Record from an engine event.
func RecordFromEvent(event engine.Event, at time.Time) Record {
	return Record{
		Timestamp:     at,
		Event:         string(event.Type),
		BPM:           event.State.BPM,
		Running:       event.State.Running,
		Mode:          event.State.Mode.String(),
		TimeSignature: event.State.TimeSignature.String(),
		Accent:        event.State.AccentEnabled,
		Visual:        event.State.VisualOnly,
	}
}

// Repository persists control event records.
type Repository interface {
	Store(ctx context.Context, rec Record) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRepository opens (and if necessary creates) the SQLite database at
// the given path.
func NewRepository(dbPath string) (Repository, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("telemetry database path is empty")
	}

	logger.Debug().Str("path", dbPath).Msg("initializing telemetry repository")

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), defaultDirPerm); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open telemetry database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init telemetry schema: %w", err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER NOT NULL,
            event TEXT NOT NULL,
            bpm INTEGER,
            running INTEGER,
            mode TEXT,
            time_signature TEXT,
            accent INTEGER,
            visual INTEGER
        )
    `)
	return err
}

func (r *sqliteRepository) Store(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO events (
            timestamp, event, bpm, running,
            mode, time_signature, accent, visual
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		rec.Timestamp.Unix(),
		rec.Event,
		rec.BPM,
		boolToInt(rec.Running),
		rec.Mode,
		rec.TimeSignature,
		boolToInt(rec.Accent),
		boolToInt(rec.Visual),
	)
	if err != nil {
		return fmt.Errorf("store telemetry event: %w", err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close telemetry database: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
