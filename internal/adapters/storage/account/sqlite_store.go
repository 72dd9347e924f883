package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sgc/internal/adapters/storage"
	domain "sgc/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByEmail retrieves an Account by email, case-insensitive.
// PRE: email is non-empty
// POST: Returns the account or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at, failed_logins, locked_until FROM account WHERE email = ?",
		domain.NormalizeEmail(email))

	var a domain.Account
	var createdAt, lockedUntil sql.NullString
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &createdAt, &a.FailedLogins, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	a.CreatedAt = storage.ParseTime(createdAt)
	a.LockedUntil = storage.ParseTime(lockedUntil)
	return a, nil
}

// Save inserts or updates an Account keyed by ID.
// PRE: value has been validated
// POST: account persisted; a clashing email yields domain.ErrDuplicateEmail
func (s *SQLiteStore) Save(ctx context.Context, value domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, created_at, failed_logins, locked_until)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, password_hash=excluded.password_hash,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		value.ID, domain.NormalizeEmail(value.Email), value.PasswordHash,
		storage.FormatTime(value.CreatedAt), value.FailedLogins, storage.FormatTime(value.LockedUntil),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: account.email") {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Count returns the number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}
