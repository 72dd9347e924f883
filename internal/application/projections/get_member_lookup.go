package projections

import (
	"context"
	"errors"
	"strings"

	"sgc/internal/domain/member"
	"sgc/internal/domain/report"
)

// ErrMemberNotFound is returned when an identifier matches no member, or more than one by mobile.
var ErrMemberNotFound = errors.New("no member found with that email or mobile number")

// ErrEmptyIdentifier is returned when the lookup form is submitted blank.
var ErrEmptyIdentifier = errors.New("enter your email or mobile number")

// Lookup modes chosen on the member portal form.
const (
	LookupByEmail  = "email"
	LookupByMobile = "mobile"
)

// MemberLookupQuery carries an email or mobile number typed by a visitor.
// An empty By guesses the mode from the identifier.
type MemberLookupQuery struct {
	By         string
	Identifier string
}

// MemberLookupResult carries a member's profile and monthly attendance.
type MemberLookupResult struct {
	Member  member.Member
	History report.History
}

// MemberLookupDeps holds dependencies for QueryMemberLookup.
type MemberLookupDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	Options         report.Options
}

// QueryMemberLookup finds exactly one member by email or mobile and summarises their attendance.
// Without an explicit mode an identifier containing '@' is an email; anything else is a mobile number.
// POST: returns ErrMemberNotFound unless exactly one member matches
// INVARIANT: working days are organisation-wide, as in the monthly report
func QueryMemberLookup(ctx context.Context, query MemberLookupQuery, deps MemberLookupDeps) (MemberLookupResult, error) {
	id := strings.TrimSpace(query.Identifier)
	if id == "" {
		return MemberLookupResult{}, ErrEmptyIdentifier
	}

	by := query.By
	if by != LookupByEmail && by != LookupByMobile {
		by = LookupByMobile
		if strings.Contains(id, "@") {
			by = LookupByEmail
		}
	}

	var m member.Member
	if by == LookupByEmail {
		found, err := deps.MemberStore.GetByEmail(ctx, id)
		if errors.Is(err, member.ErrNotFound) {
			return MemberLookupResult{}, ErrMemberNotFound
		}
		if err != nil {
			return MemberLookupResult{}, err
		}
		m = found
	} else {
		found, err := deps.MemberStore.ListByMobile(ctx, id)
		if err != nil {
			return MemberLookupResult{}, err
		}
		if len(found) != 1 {
			return MemberLookupResult{}, ErrMemberNotFound
		}
		m = found[0]
	}

	records, err := deps.AttendanceStore.ListAll(ctx)
	if err != nil {
		return MemberLookupResult{}, err
	}
	return MemberLookupResult{Member: m, History: report.BuildMemberHistory(m, records, deps.Options)}, nil
}
