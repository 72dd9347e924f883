package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sgc/internal/adapters/storage"
	domain "sgc/internal/domain/member"
)

const columns = "id, name, department, role, email, mobile, academic_year"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the member or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM member WHERE id = ?", id)
	return scanOne(row)
}

// GetByEmail retrieves a Member by email, case-insensitive.
// PRE: email is non-empty
// POST: Returns the member or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM member WHERE email = ?", strings.TrimSpace(email))
	return scanOne(row)
}

// ListByMobile returns members whose mobile equals mobile exactly.
func (s *SQLiteStore) ListByMobile(ctx context.Context, mobile string) ([]domain.Member, error) {
	return s.query(ctx, "SELECT "+columns+" FROM member WHERE mobile = ? ORDER BY name", strings.TrimSpace(mobile))
}

// ListByRoles returns members holding any of roles.
// POST: an empty roles slice returns no members
func (s *SQLiteStore) ListByRoles(ctx context.Context, roles []string) ([]domain.Member, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	args := make([]any, len(roles))
	for i, r := range roles {
		args[i] = r
	}
	query := "SELECT " + columns + " FROM member WHERE role IN (" + placeholders(len(roles)) + ") ORDER BY name"
	return s.query(ctx, query, args...)
}

// List returns the whole roster ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Member, error) {
	return s.query(ctx, "SELECT "+columns+" FROM member ORDER BY name COLLATE NOCASE")
}

// Count returns the roster size.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member").Scan(&n)
	return n, err
}

// Save inserts or replaces a Member keyed by ID.
// PRE: value has been validated
// POST: member persisted; a clashing email yields domain.ErrDuplicate
func (s *SQLiteStore) Save(ctx context.Context, value domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO member ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET name=excluded.name, department=excluded.department, role=excluded.role, "+
			"email=excluded.email, mobile=excluded.mobile, academic_year=excluded.academic_year",
		value.ID, value.Name, value.Department, value.Role, strings.TrimSpace(value.Email), value.Mobile, value.AcademicYear,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: member.email") {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

// UpdateYearAndRole changes only a member's academic year and role.
// POST: domain.ErrNotFound when no member has id
func (s *SQLiteStore) UpdateYearAndRole(ctx context.Context, id, year, role string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE member SET academic_year = ?, role = ? WHERE id = ?", year, role, id)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteMany removes the members with the given IDs in one statement.
// Their attendance rows are removed by the foreign key cascade.
// POST: returns the number of members removed
func (s *SQLiteStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete members: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scan(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanOne(row *sql.Row) (domain.Member, error) {
	m, err := scan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.ErrNotFound
	}
	return m, err
}

func scan(scanFn func(dest ...any) error) (domain.Member, error) {
	var m domain.Member
	err := scanFn(&m.ID, &m.Name, &m.Department, &m.Role, &m.Email, &m.Mobile, &m.AcademicYear)
	return m, err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
