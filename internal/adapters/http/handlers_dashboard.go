package web

import (
	"net/http"

	"sgc/internal/application/projections"
)

// handleDashboard handles GET /admin/dashboard.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	deps := projections.DashboardDeps{
		MemberStore:     stores.MemberStore,
		AttendanceStore: stores.AttendanceStore,
		FeedbackStore:   stores.FeedbackStore,
		OutboxStore:     stores.OutboxStore,
		Now:             timeNow,
	}
	if perfCollector != nil {
		deps.Perf = perfCollector
	}
	result, err := projections.QueryDashboard(r.Context(), projections.DashboardQuery{}, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "dashboard.html", map[string]any{
		"Result":    result,
		"HasPerf":   perfCollector != nil,
		"CanFlush":  outboxProcessor != nil,
		"Telegram":  telegramEnabled,
		"Threshold": reportOptions.Threshold,
	})
}
