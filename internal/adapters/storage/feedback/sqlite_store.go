package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sgc/internal/adapters/storage"
	domain "sgc/internal/domain/feedback"
)

const columns = "id, created_at, name, email, feedback_type, message, status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new feedback store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a submission.
// POST: domain.ErrNotFound when absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Feedback, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM feedback WHERE id = ?", id)
	f, err := scan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Feedback{}, domain.ErrNotFound
	}
	return f, err
}

// Save inserts a new submission.
// PRE: value has been validated
func (s *SQLiteStore) Save(ctx context.Context, value domain.Feedback) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO feedback ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		value.ID, storage.FormatTime(value.CreatedAt), value.Name, value.Email, value.Type, value.Message, value.Status,
	)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// UpdateStatus sets a submission's status.
// POST: domain.ErrNotFound when no submission has id
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE feedback SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update feedback status: %w", err)
	}
	return requireOne(res)
}

// Delete removes a submission.
// POST: domain.ErrNotFound when no submission has id
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM feedback WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return requireOne(res)
}

// List returns every submission, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM feedback ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		f, err := scan(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of submissions per status.
// POST: every known status is present in the map, zero when unused
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(domain.ValidStatuses))
	for _, st := range domain.ValidStatuses {
		counts[st] = 0
	}
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM feedback GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scan(scanFn func(dest ...any) error) (domain.Feedback, error) {
	var f domain.Feedback
	var createdAt sql.NullString
	if err := scanFn(&f.ID, &createdAt, &f.Name, &f.Email, &f.Type, &f.Message, &f.Status); err != nil {
		return domain.Feedback{}, err
	}
	f.CreatedAt = storage.ParseTime(createdAt)
	return f, nil
}
