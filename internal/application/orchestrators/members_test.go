package orchestrators

import (
	"context"
	"errors"
	"testing"

	"sgc/internal/domain/member"
)

func TestExecuteAddMember(t *testing.T) {
	store := newMockMemberStore()
	deps := RosterDeps{MemberStore: store, GenerateID: sequentialIDs()}
	ctx := context.Background()

	m, err := ExecuteAddMember(ctx, AddMemberInput{
		Name: "  Kavya  ", Department: "CSE", Role: member.RoleTrainee,
		Email: "kavya@sgc.org", Mobile: "+91 98765 43210", AcademicYear: member.YearI,
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "id-1" || m.Name != "Kavya" {
		t.Errorf("unexpected member %+v", m)
	}
	if _, ok := store.members["id-1"]; !ok {
		t.Error("expected member to be persisted")
	}

	_, err = ExecuteAddMember(ctx, AddMemberInput{
		Name: "Other", Role: member.RoleMember, Email: "KAVYA@sgc.org", AcademicYear: member.YearII,
	}, deps)
	if !errors.Is(err, member.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestExecuteAddMember_Invalid(t *testing.T) {
	valid := AddMemberInput{Name: "Ravi", Role: member.RoleMember, Email: "ravi@sgc.org", AcademicYear: member.YearII}
	cases := []struct {
		name   string
		mutate func(*AddMemberInput)
	}{
		{"missing name", func(in *AddMemberInput) { in.Name = " " }},
		{"bad email", func(in *AddMemberInput) { in.Email = "ravi" }},
		{"unknown role", func(in *AddMemberInput) { in.Role = "Captain" }},
		{"unknown year", func(in *AddMemberInput) { in.AcademicYear = "V" }},
		{"letters in mobile", func(in *AddMemberInput) { in.Mobile = "call me" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := valid
			c.mutate(&in)
			deps := RosterDeps{MemberStore: newMockMemberStore(), GenerateID: sequentialIDs()}
			if _, err := ExecuteAddMember(context.Background(), in, deps); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// TestExecuteUpdateMember changes only year and role.
func TestExecuteUpdateMember(t *testing.T) {
	store := newMockMemberStore(member.Member{ID: "m-1", Name: "Ravi", Department: "ECE", Role: member.RoleTrainee, Email: "ravi@sgc.org", AcademicYear: member.YearI})
	deps := RosterDeps{MemberStore: store}
	ctx := context.Background()

	if err := ExecuteUpdateMember(ctx, UpdateMemberInput{ID: "m-1", AcademicYear: member.YearII, Role: member.RoleMember}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := store.members["m-1"]
	if got.AcademicYear != member.YearII || got.Role != member.RoleMember || got.Department != "ECE" {
		t.Errorf("unexpected member %+v", got)
	}

	err := ExecuteUpdateMember(ctx, UpdateMemberInput{ID: "m-1", AcademicYear: member.YearII, Role: "Boss"}, deps)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	err = ExecuteUpdateMember(ctx, UpdateMemberInput{ID: "missing", AcademicYear: member.YearII, Role: member.RoleMember}, deps)
	if !errors.Is(err, member.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExecuteDeleteMembers(t *testing.T) {
	store := newMockMemberStore(
		member.Member{ID: "a", Name: "A"},
		member.Member{ID: "b", Name: "B"},
		member.Member{ID: "c", Name: "C"},
	)
	deps := RosterDeps{MemberStore: store}
	ctx := context.Background()

	if _, err := ExecuteDeleteMembers(ctx, DeleteMembersInput{IDs: []string{"", " "}}, deps); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
	n, err := ExecuteDeleteMembers(ctx, DeleteMembersInput{IDs: []string{"a", "b", "a"}}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(store.members) != 1 {
		t.Errorf("deleted %d, %d left", n, len(store.members))
	}
}
