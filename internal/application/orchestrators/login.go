package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sgc/internal/domain/account"
	"sgc/internal/domain/member"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// MemberStoreForLogin resolves the roster entry behind a signed-in email.
type MemberStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID string
	Email     string
	MemberID  string
	Name      string
	Role      string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	MemberStore  MemberStoreForLogin
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
	ErrRoleNotAllowed     = errors.New("you don't have permission to access the admin dashboard")
)

// ExecuteLogin checks credentials and then the role gate.
// PRE: none; empty or malformed input is reported as ErrInvalidCredentials
// POST: on success the caller may create a session; on ErrRoleNotAllowed it must not
// INVARIANT: only members whose role is President, Vice President or Administrator pass
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	if err := validateInput(input); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked(now()) {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now())
		if saveErr := deps.AccountStore.Save(ctx, acct); saveErr != nil {
			slog.Error("auth_event", "event", "login_save_failed", "email", input.Email, "error", saveErr)
		}
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "login_save_failed", "email", input.Email, "error", err)
		}
	}

	m, err := ExecuteAuthorizeAdmin(ctx, AuthorizeAdminInput{Email: acct.Email}, AuthorizeAdminDeps{MemberStore: deps.MemberStore})
	if err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "email", acct.Email, "role", m.Role)
	return LoginResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		MemberID:  m.ID,
		Name:      m.Name,
		Role:      m.Role,
	}, nil
}

// AuthorizeAdminInput names the email of a signed-in session.
type AuthorizeAdminInput struct {
	Email string
}

// AuthorizeAdminDeps holds dependencies for AuthorizeAdmin.
type AuthorizeAdminDeps struct {
	MemberStore MemberStoreForLogin
}

// ExecuteAuthorizeAdmin applies the role gate to an email.
// It runs at login and again on every admin request, so a demoted member loses access
// on their next page load.
// POST: returns the member, ErrRoleNotAllowed, or a store error
func ExecuteAuthorizeAdmin(ctx context.Context, input AuthorizeAdminInput, deps AuthorizeAdminDeps) (member.Member, error) {
	m, err := deps.MemberStore.GetByEmail(ctx, input.Email)
	if errors.Is(err, member.ErrNotFound) {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "no_member")
		return member.Member{}, ErrRoleNotAllowed
	}
	if err != nil {
		return member.Member{}, err
	}
	if !m.IsAdmin() {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "role_not_allowed", "role", m.Role)
		return member.Member{}, ErrRoleNotAllowed
	}
	return m, nil
}
