package projections

import (
	"context"

	"sgc/internal/application/listutil"
	"sgc/internal/domain/feedback"
)

// FeedbackListQuery carries the console's search, status filter and page.
type FeedbackListQuery struct {
	List   listutil.Params
	Status string // empty or unknown means every status
}

// FeedbackListResult carries one page of feedback and the per-status counts.
type FeedbackListResult struct {
	Items  []feedback.Feedback
	Page   listutil.PageInfo
	Counts map[string]int
	Total  int
	Status string
	Search string
}

// FeedbackListDeps holds dependencies for QueryFeedbackList.
type FeedbackListDeps struct {
	FeedbackStore FeedbackStore
}

// QueryFeedbackList lists feedback newest first.
// POST: Counts covers every status over all feedback, ignoring the filters
func QueryFeedbackList(ctx context.Context, query FeedbackListQuery, deps FeedbackListDeps) (FeedbackListResult, error) {
	all, err := deps.FeedbackStore.List(ctx)
	if err != nil {
		return FeedbackListResult{}, err
	}
	counts, err := deps.FeedbackStore.CountByStatus(ctx)
	if err != nil {
		return FeedbackListResult{}, err
	}

	status := query.Status
	if !feedback.IsValidStatus(status) {
		status = ""
	}
	var matched []feedback.Feedback
	for _, f := range all {
		if status != "" && f.Status != status {
			continue
		}
		if f.Matches(query.List.Search) {
			matched = append(matched, f)
		}
	}
	page, info := listutil.Paginate(matched, query.List)
	return FeedbackListResult{
		Items:  page,
		Page:   info,
		Counts: counts,
		Total:  len(all),
		Status: status,
		Search: query.List.Search,
	}, nil
}
