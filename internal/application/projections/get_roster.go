package projections

import (
	"context"

	"sgc/internal/application/listutil"
	"sgc/internal/domain/member"
)

// RosterQuery carries the roster list parameters.
type RosterQuery struct {
	List listutil.Params
}

// RosterResult carries one page of the sorted, filtered roster.
type RosterResult struct {
	Members []member.Member
	Page    listutil.PageInfo
	Search  string
	Total   int // roster size before filtering
}

// RosterDeps holds dependencies for QueryRoster.
type RosterDeps struct {
	MemberStore MemberStore
}

// QueryRoster searches and pages the roster.
// POST: Members are sorted senior year first, then by name
// INVARIANT: text fields match case-insensitively; mobile matches as a plain substring
func QueryRoster(ctx context.Context, query RosterQuery, deps RosterDeps) (RosterResult, error) {
	all, err := deps.MemberStore.List(ctx)
	if err != nil {
		return RosterResult{}, err
	}
	var matched []member.Member
	for _, m := range all {
		if m.Matches(query.List.Search) {
			matched = append(matched, m)
		}
	}
	member.SortRoster(matched)
	page, info := listutil.Paginate(matched, query.List)
	return RosterResult{
		Members: page,
		Page:    info,
		Search:  query.List.Search,
		Total:   len(all),
	}, nil
}
