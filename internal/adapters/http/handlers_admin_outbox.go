package web

import (
	"net/http"
	"strconv"
)

// handleAdminOutbox handles GET (failed deliveries) and POST (deliver pending now) for /admin/outbox.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		limit := 50
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
			limit = n
		}
		entries, err := stores.OutboxStore.ListFailed(ctx, limit)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		if outboxProcessor == nil {
			http.Error(w, "outbox delivery is not running", http.StatusServiceUnavailable)
			return
		}
		if err := outboxProcessor.ProcessPending(ctx); err != nil {
			internalError(w, err)
			return
		}
		if !isHTMLRequest(r) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
			return
		}
		redirectWithFlash(w, r, dashboardPath, "Pending notifications processed")

	default:
		methodNotAllowed(w)
	}
}
