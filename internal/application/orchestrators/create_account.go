package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sgc/internal/domain/account"
	"sgc/internal/domain/member"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// MemberStoreForAccount looks up the roster entry an account signs in as.
type MemberStoreForAccount interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required"`
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	MemberStore  MemberStoreForAccount
	GenerateID   func() string
	Now          func() time.Time
}

// ErrNoMemberForEmail is returned when credentials are requested for an email not on the roster.
var ErrNoMemberForEmail = errors.New("no roster member has this email")

// ExecuteCreateAccount creates sign-in credentials for an existing member.
// PRE: a member with input.Email exists
// POST: account saved with a bcrypt hash
// INVARIANT: at most one account per email
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	if err := validateInput(input); err != nil {
		return account.Account{}, err
	}
	if _, err := deps.MemberStore.GetByEmail(ctx, input.Email); err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return account.Account{}, ErrNoMemberForEmail
		}
		return account.Account{}, err
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return account.Account{}, account.ErrDuplicateEmail
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     account.NormalizeEmail(input.Email),
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email)
	return acct, nil
}

// MemberStoreForSeed defines the member store interface needed by SeedAdmin.
type MemberStoreForSeed interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// SeedAdminInput carries the bootstrap administrator.
type SeedAdminInput struct {
	Email    string
	Password string
	Name     string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForCreate
	MemberStore  MemberStoreForSeed
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin makes sure the bootstrap administrator can sign in.
// An empty password seeds the roster entry only.
// POST: a member with role Administrator exists for input.Email; an account exists when a password was given
// INVARIANT: idempotent; existing members and accounts are left untouched
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	if input.Email == "" {
		return nil
	}
	_, err := deps.MemberStore.GetByEmail(ctx, input.Email)
	switch {
	case errors.Is(err, member.ErrNotFound):
		name := input.Name
		if name == "" {
			name = member.RoleAdministrator
		}
		m := member.Member{
			ID:           deps.GenerateID(),
			Name:         name,
			Role:         member.RoleAdministrator,
			Email:        account.NormalizeEmail(input.Email),
			AcademicYear: member.YearIV,
		}
		if err := m.Validate(); err != nil {
			return err
		}
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return err
		}
		slog.Info("seed_admin", "event", "member_created", "email", m.Email)
	case err != nil:
		return err
	}

	if input.Password == "" {
		slog.Warn("seed_admin", "event", "account_skipped", "email", input.Email, "reason", "no_password")
		return nil
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return nil
	}
	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{Email: input.Email, Password: input.Password}, CreateAccountDeps{
		AccountStore: deps.AccountStore,
		MemberStore:  deps.MemberStore,
		GenerateID:   deps.GenerateID,
		Now:          deps.Now,
	})
	return err
}
