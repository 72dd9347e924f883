package attendance

import (
	"context"
	"fmt"
	"time"

	"sgc/internal/adapters/storage"
	domain "sgc/internal/domain/attendance"
)

const columns = "member_id, date, is_present"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// UpsertBatch writes every record in one transaction, keyed on (member_id, date).
// PRE: every record has been validated
// POST: all records are stored or none are; at most one row per (member_id, date)
func (s *SQLiteStore) UpsertBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO attendance (member_id, date, is_present, updated_at) VALUES (?, ?, ?, ?) "+
			"ON CONFLICT(member_id, date) DO UPDATE SET is_present = excluded.is_present, updated_at = excluded.updated_at")
	if err != nil {
		return fmt.Errorf("prepare attendance upsert: %w", err)
	}
	defer stmt.Close()

	stamp := storage.FormatTime(s.now())
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.MemberID, r.Date, r.IsPresent, stamp); err != nil {
			return fmt.Errorf("upsert attendance %s/%s: %w", r.MemberID, r.Date, err)
		}
	}
	return tx.Commit()
}

// ListByDate returns every mark recorded for date.
func (s *SQLiteStore) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	return s.query(ctx, "SELECT "+columns+" FROM attendance WHERE date = ? ORDER BY member_id", date)
}

// ListByMonth returns every mark whose date falls in month (YYYY-MM).
func (s *SQLiteStore) ListByMonth(ctx context.Context, month string) ([]domain.Record, error) {
	return s.query(ctx, "SELECT "+columns+" FROM attendance WHERE substr(date, 1, 7) = ? ORDER BY date, member_id", month)
}

// ListByMember returns a member's marks, oldest first.
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID string) ([]domain.Record, error) {
	return s.query(ctx, "SELECT "+columns+" FROM attendance WHERE member_id = ? ORDER BY date", memberID)
}

// ListAll returns every mark, oldest first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	return s.query(ctx, "SELECT "+columns+" FROM attendance ORDER BY date, member_id")
}

// ListMonths returns the distinct months with any marks, ascending.
func (s *SQLiteStore) ListMonths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT substr(date, 1, 7) AS month FROM attendance ORDER BY month")
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountByDate returns how many members have a mark on date.
func (s *SQLiteStore) CountByDate(ctx context.Context, date string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance WHERE date = ?", date).Scan(&n)
	return n, err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		if err := rows.Scan(&r.MemberID, &r.Date, &r.IsPresent); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
