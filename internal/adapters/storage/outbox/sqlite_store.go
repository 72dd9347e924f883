package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sgc/internal/adapters/storage"
	domain "sgc/internal/domain/outbox"
)

const columns = "id, channel, payload, status, attempts, max_attempts, last_attempted_at, next_attempt_at, created_at, error_message"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an entry, replacing its delivery state on conflict.
// PRE: e has been validated
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempted_at=excluded.last_attempted_at, next_attempt_at=excluded.next_attempt_at,
		   error_message=excluded.error_message`,
		e.ID, e.Channel, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		storage.FormatTime(e.LastAttemptedAt), storage.FormatTime(e.NextAttemptAt),
		storage.FormatTime(e.CreatedAt), e.ErrorMessage)
	if err != nil {
		return fmt.Errorf("save outbox entry: %w", err)
	}
	return nil
}

// ListPending returns entries due for delivery at now, oldest first.
// Backed-off entries are filtered in SQL so they never fill the batch.
func (s *SQLiteStore) ListPending(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error) {
	return s.query(ctx,
		`SELECT `+columns+` FROM outbox
		 WHERE status IN (?, ?) AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
		 ORDER BY created_at ASC LIMIT ?`,
		domain.StatusPending, domain.StatusRetrying, storage.FormatTime(now), limit)
}

// ListFailed returns entries that exhausted their attempts, most recent first.
func (s *SQLiteStore) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.query(ctx,
		`SELECT `+columns+` FROM outbox WHERE status = ? ORDER BY last_attempted_at DESC LIMIT ?`,
		domain.StatusFailed, limit)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var lastAttempted, nextAttempt, created sql.NullString
		if err := rows.Scan(&e.ID, &e.Channel, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
			&lastAttempted, &nextAttempt, &created, &e.ErrorMessage); err != nil {
			return nil, err
		}
		e.LastAttemptedAt = storage.ParseTime(lastAttempted)
		e.NextAttemptAt = storage.ParseTime(nextAttempt)
		e.CreatedAt = storage.ParseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}
