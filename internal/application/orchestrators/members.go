package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"sgc/internal/domain/member"
)

// MemberStoreForRoster defines the store interface needed by the roster commands.
type MemberStoreForRoster interface {
	Save(ctx context.Context, m member.Member) error
	UpdateYearAndRole(ctx context.Context, id, year, role string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
}

// AddMemberInput carries input for AddMember.
type AddMemberInput struct {
	Name         string `validate:"required,max=100"`
	Department   string `validate:"max=100"`
	Role         string `validate:"required,role"`
	Email        string `validate:"required,email"`
	Mobile       string `validate:"max=20"`
	AcademicYear string `validate:"required,year"`
}

// RosterDeps holds dependencies for the roster commands.
type RosterDeps struct {
	MemberStore MemberStoreForRoster
	GenerateID  func() string
}

// ErrEmptySelection is returned when a bulk action names no members.
var ErrEmptySelection = errors.New("select at least one member")

// ExecuteAddMember adds a member to the roster.
// POST: member persisted with a fresh ID; a clashing email yields member.ErrDuplicate
func ExecuteAddMember(ctx context.Context, input AddMemberInput, deps RosterDeps) (member.Member, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Mobile = strings.TrimSpace(input.Mobile)
	if err := validateInput(input); err != nil {
		return member.Member{}, err
	}
	m := member.Member{
		ID:           deps.GenerateID(),
		Name:         input.Name,
		Department:   strings.TrimSpace(input.Department),
		Role:         input.Role,
		Email:        input.Email,
		Mobile:       input.Mobile,
		AcademicYear: input.AcademicYear,
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	slog.Info("member_added", "member_id", m.ID, "role", m.Role, "year", m.AcademicYear)
	return m, nil
}

// UpdateMemberInput carries the only editable roster fields.
type UpdateMemberInput struct {
	ID           string `validate:"required"`
	AcademicYear string `validate:"required,year"`
	Role         string `validate:"required,role"`
}

// ExecuteUpdateMember changes a member's academic year and role.
// POST: other fields unchanged; unknown ID yields member.ErrNotFound
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps RosterDeps) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.MemberStore.UpdateYearAndRole(ctx, input.ID, input.AcademicYear, input.Role); err != nil {
		return err
	}
	slog.Info("member_updated", "member_id", input.ID, "role", input.Role, "year", input.AcademicYear)
	return nil
}

// DeleteMembersInput names the members to remove.
type DeleteMembersInput struct {
	IDs []string
}

// ExecuteDeleteMembers removes the selected members and their attendance rows.
// PRE: the caller has confirmed the deletion
// POST: returns the number of members removed
func ExecuteDeleteMembers(ctx context.Context, input DeleteMembersInput, deps RosterDeps) (int, error) {
	ids := make([]string, 0, len(input.IDs))
	seen := make(map[string]bool, len(input.IDs))
	for _, id := range input.IDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	n, err := deps.MemberStore.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	slog.Info("members_deleted", "requested", len(ids), "deleted", n)
	return n, nil
}
