package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// TimeLayout is the fixed-width timestamp format used in every table, so text order is time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t for storage; the zero time becomes NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp; NULL or unparsable values yield the zero time.
func ParseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	for _, layout := range []string{TimeLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Open opens the SQLite database at path with WAL, foreign keys and a busy timeout.
// An in-memory database is pinned to a single connection so every query sees the same data.
// PRE: path is a file path or ":memory:"
// POST: returns a pinged *sql.DB
func Open(path string) (*sql.DB, error) {
	pragmas := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	if path != ":memory:" {
		pragmas += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", path+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(8)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

type migration struct {
	version     int
	description string
	statements  string
}

// migrations are applied in order; a version is never edited once released.
var migrations = []migration{
	{1, "roster, attendance, feedback and accounts", `
	CREATE TABLE member (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		mobile TEXT NOT NULL DEFAULT '',
		academic_year TEXT NOT NULL
	);

	CREATE TABLE attendance (
		member_id TEXT NOT NULL,
		date TEXT NOT NULL,
		is_present INTEGER NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (member_id, date),
		FOREIGN KEY (member_id) REFERENCES member(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_attendance_date ON attendance(date);

	CREATE TABLE feedback (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		feedback_type TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
	);
	CREATE INDEX idx_feedback_created ON feedback(created_at);

	CREATE TABLE account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);`},
	{2, "notification outbox", `
	CREATE TABLE outbox (
		id TEXT PRIMARY KEY,
		channel TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_outbox_status ON outbox(status);`},
	{3, "outbox due time", `
	ALTER TABLE outbox ADD COLUMN next_attempt_at TEXT;
	CREATE INDEX idx_outbox_due ON outbox(status, next_attempt_at);`},
}

// LatestSchemaVersion returns the version the newest migration brings the schema to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for a fresh database.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&v)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB applies pending migrations, each in its own transaction.
// PRE: db is open
// POST: SchemaVersion(db) == LatestSchemaVersion(); running it again is a no-op
func MigrateDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.statements); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)",
		m.version, m.description, FormatTime(time.Now()),
	); err != nil {
		return err
	}
	return tx.Commit()
}
