package web

import (
	"errors"
	"net/http"

	"sgc/internal/adapters/markdown"
	"sgc/internal/application/orchestrators"
	"sgc/internal/application/projections"
	"sgc/internal/domain/feedback"
)

// handleHome serves GET / and 404s every other unmatched path.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	renderTemplate(w, r, "home.html", nil)
}

// handleHealthz reports liveness and database reachability.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := stores.MemberStore.Count(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type memberLookupRequest struct {
	By         string `json:"by"`
	Identifier string `json:"identifier"`
}

// handleMemberLookup handles GET (form) and POST (lookup) for /member.
func handleMemberLookup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, r, "member.html", map[string]any{"By": projections.LookupByEmail})
	case http.MethodPost:
		var req memberLookupRequest
		jsonBody := isJSONBody(r)
		if jsonBody {
			if err := strictDecode(r, &req); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}
		} else {
			req.By = r.FormValue("by")
			req.Identifier = r.FormValue("identifier")
		}

		result, err := projections.QueryMemberLookup(r.Context(),
			projections.MemberLookupQuery{By: req.By, Identifier: req.Identifier},
			projections.MemberLookupDeps{
				MemberStore:     stores.MemberStore,
				AttendanceStore: stores.AttendanceStore,
				Options:         reportOptions,
			})
		notFound := errors.Is(err, projections.ErrMemberNotFound) || errors.Is(err, projections.ErrEmptyIdentifier)
		if err != nil && !notFound {
			internalError(w, err)
			return
		}
		if jsonBody {
			if notFound {
				writeJSONError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, result)
			return
		}
		data := map[string]any{"By": req.By, "Identifier": req.Identifier}
		if notFound {
			data["Error"] = err.Error()
		} else {
			data["Result"] = result
		}
		renderTemplate(w, r, "member.html", data)
	default:
		methodNotAllowed(w)
	}
}

type feedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// feedbackUserErrors are submission failures the visitor can correct in the form.
var feedbackUserErrors = []error{
	feedback.ErrEmptyName, feedback.ErrInvalidEmail, feedback.ErrEmptyMessage,
	feedback.ErrNameTooLong, feedback.ErrMessageTooLong,
}

// handlePublicFeedback handles GET (form) and POST (submit) for /feedback.
func handlePublicFeedback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, r, "feedback_form.html", map[string]any{"Types": feedback.Types})
	case http.MethodPost:
		var req feedbackRequest
		jsonBody := isJSONBody(r)
		if jsonBody {
			if err := strictDecode(r, &req); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}
		} else {
			req = feedbackRequest{
				Name:    r.FormValue("name"),
				Email:   r.FormValue("email"),
				Type:    r.FormValue("type"),
				Message: r.FormValue("message"),
			}
		}

		f, err := orchestrators.ExecuteSubmitFeedback(r.Context(), orchestrators.SubmitFeedbackInput{
			Name:    req.Name,
			Email:   req.Email,
			Type:    req.Type,
			Message: req.Message,
		}, orchestrators.SubmitFeedbackDeps{
			FeedbackStore:  stores.FeedbackStore,
			MemberStore:    stores.MemberStore,
			OutboxStore:    stores.OutboxStore,
			RenderMarkdown: markdown.Render,
			GenerateID:     generateID,
			Now:            timeNow,
		})
		userErr := err != nil && isUserError(err, feedbackUserErrors...)
		if err != nil && !userErr {
			internalError(w, err)
			return
		}
		if jsonBody {
			if userErr {
				writeJSONError(w, http.StatusBadRequest, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"id": f.ID})
			return
		}
		if userErr {
			renderTemplateStatus(w, r, "feedback_form.html", http.StatusBadRequest, map[string]any{
				"Types": feedback.Types,
				"Error": err.Error(),
				"Form":  req,
			})
			return
		}
		renderTemplate(w, r, "feedback_form.html", map[string]any{"Types": feedback.Types, "Success": true})
	default:
		methodNotAllowed(w)
	}
}
