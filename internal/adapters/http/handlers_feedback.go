package web

import (
	"errors"
	"net/http"

	"sgc/internal/application/listutil"
	"sgc/internal/application/orchestrators"
	"sgc/internal/application/projections"
	"sgc/internal/domain/feedback"
)

const feedbackConsolePath = "/admin/feedback"

func triageDeps() orchestrators.FeedbackTriageDeps {
	return orchestrators.FeedbackTriageDeps{FeedbackStore: stores.FeedbackStore}
}

// handleFeedbackConsole handles GET /admin/feedback.
func handleFeedbackConsole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	result, err := projections.QueryFeedbackList(r.Context(),
		projections.FeedbackListQuery{List: listutil.ParseParams(q), Status: q.Get("status")},
		projections.FeedbackListDeps{FeedbackStore: stores.FeedbackStore})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "feedback.html", map[string]any{
		"Result":         result,
		"Statuses":       feedback.ValidStatuses,
		"PerPageOptions": listutil.PerPageOptions,
	})
}

type feedbackStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// handleFeedbackStatus handles POST /admin/feedback/status.
func handleFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req feedbackStatusRequest
	jsonBody := isJSONBody(r)
	if jsonBody {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	} else {
		req = feedbackStatusRequest{ID: r.FormValue("id"), Status: r.FormValue("status")}
	}

	err := orchestrators.ExecuteUpdateFeedbackStatus(r.Context(),
		orchestrators.UpdateFeedbackStatusInput(req), triageDeps())
	respondTriage(w, r, jsonBody, err, "Status updated")
}

// handleFeedbackDelete handles POST /admin/feedback/delete.
// A form post without confirm=yes renders the confirmation step instead of deleting.
func handleFeedbackDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var id string
	jsonBody := isJSONBody(r)
	if jsonBody {
		var req struct {
			ID string `json:"id"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		id = req.ID
	} else {
		id = r.FormValue("id")
		if r.FormValue("confirm") != "yes" {
			f, err := stores.FeedbackStore.GetByID(r.Context(), id)
			if errors.Is(err, feedback.ErrNotFound) {
				redirectWithFlash(w, r, feedbackConsolePath, err.Error())
				return
			}
			if err != nil {
				internalError(w, err)
				return
			}
			renderTemplate(w, r, "feedback_confirm_delete.html", map[string]any{"Feedback": f})
			return
		}
	}

	err := orchestrators.ExecuteDeleteFeedback(r.Context(), orchestrators.DeleteFeedbackInput{ID: id}, triageDeps())
	respondTriage(w, r, jsonBody, err, "Feedback deleted")
}

func respondTriage(w http.ResponseWriter, r *http.Request, jsonBody bool, err error, okFlash string) {
	status := http.StatusOK
	switch {
	case errors.Is(err, feedback.ErrNotFound):
		status = http.StatusNotFound
	case err != nil && isUserError(err, feedback.ErrInvalidStatus):
		status = http.StatusBadRequest
	case err != nil:
		internalError(w, err)
		return
	}
	if jsonBody {
		if err != nil {
			writeJSONError(w, status, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	flash := okFlash
	if err != nil {
		flash = err.Error()
	}
	redirectWithFlash(w, r, feedbackConsolePath, flash)
}
