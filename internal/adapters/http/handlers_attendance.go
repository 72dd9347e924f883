package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"sgc/internal/application/orchestrators"
	"sgc/internal/application/projections"
	"sgc/internal/domain/attendance"
)

const attendancePath = "/admin/attendance"

// Form field prefixes for the attendance editor. Each row posts its loaded
// value under origPrefix and the edited value under markPrefix.
const (
	origPrefix   = "orig."
	markPrefix   = "mark."
	valuePresent = "present"
	valueAbsent  = "absent"
)

type submitAttendanceRequest struct {
	Date     string          `json:"date"`
	Original map[string]bool `json:"original"`
	Current  map[string]bool `json:"current"`
}

func attendancePage(date, flash string) string {
	q := url.Values{}
	q.Set("date", date)
	if flash != "" {
		q.Set("flash", flash)
	}
	return attendancePath + "?" + q.Encode()
}

// parseMarks reads every prefixed present/absent field into a map keyed by member ID.
func parseMarks(form url.Values, prefix string) map[string]bool {
	out := make(map[string]bool)
	for key, values := range form {
		id, ok := strings.CutPrefix(key, prefix)
		if !ok || id == "" || len(values) == 0 {
			continue
		}
		switch values[len(values)-1] {
		case valuePresent:
			out[id] = true
		case valueAbsent:
			out[id] = false
		}
	}
	return out
}

// handleAttendance handles GET (editor) and POST (submit changes) for /admin/attendance.
func handleAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		result, err := projections.QueryAttendanceSheet(ctx,
			projections.AttendanceSheetQuery{Date: r.URL.Query().Get("date")},
			projections.AttendanceSheetDeps{
				MemberStore:     stores.MemberStore,
				AttendanceStore: stores.AttendanceStore,
				Now:             timeNow,
			})
		if errors.Is(err, attendance.ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		if !isHTMLRequest(r) {
			writeJSON(w, http.StatusOK, result)
			return
		}
		renderTemplate(w, r, "attendance.html", map[string]any{
			"Result":   result,
			"Telegram": telegramEnabled,
		})

	case http.MethodPost:
		var req submitAttendanceRequest
		jsonBody := isJSONBody(r)
		if jsonBody {
			if err := strictDecode(r, &req); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			req.Date = r.PostFormValue("date")
			req.Original = parseMarks(r.PostForm, origPrefix)
			req.Current = parseMarks(r.PostForm, markPrefix)
		}

		result, err := orchestrators.ExecuteSubmitAttendance(ctx, orchestrators.SubmitAttendanceInput{
			Date:     req.Date,
			Original: req.Original,
			Current:  req.Current,
		}, orchestrators.SubmitAttendanceDeps{
			AttendanceStore: stores.AttendanceStore,
			MemberStore:     stores.MemberStore,
		})

		if errors.Is(err, attendance.ErrNoChanges) {
			if jsonBody {
				writeJSON(w, http.StatusOK, orchestrators.SubmitAttendanceResult{Date: req.Date})
				return
			}
			http.Redirect(w, r, attendancePage(req.Date, "No changes to save"), http.StatusSeeOther)
			return
		}
		if err != nil && !isUserError(err, attendance.ErrUnknownCell, attendance.ErrInvalidDate) {
			internalError(w, err)
			return
		}
		if err != nil {
			if jsonBody {
				writeJSONError(w, http.StatusBadRequest, err)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if jsonBody {
			writeJSON(w, http.StatusOK, result)
			return
		}
		http.Redirect(w, r, attendancePage(result.Date, fmt.Sprintf("Saved %d change(s)", result.Changed)), http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

// handleAttendanceShare handles POST /admin/attendance/share.
// With Telegram configured the summary is queued for the group chat; otherwise
// the browser is sent to the wa.me link.
func handleAttendanceShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	date := r.FormValue("date")
	result, err := orchestrators.ExecuteShareAttendance(r.Context(),
		orchestrators.ShareAttendanceInput{Date: date},
		orchestrators.ShareAttendanceDeps{
			AttendanceStore: stores.AttendanceStore,
			MemberStore:     stores.MemberStore,
			OutboxStore:     stores.OutboxStore,
			Telegram:        telegramEnabled,
			GenerateID:      generateID,
			Now:             timeNow,
		})
	if err != nil && !isUserError(err, orchestrators.ErrNothingToShare) {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}
	switch {
	case err != nil:
		http.Redirect(w, r, attendancePage(date, err.Error()), http.StatusSeeOther)
	case result.Queued:
		http.Redirect(w, r, attendancePage(date, "Summary queued for the Telegram group"), http.StatusSeeOther)
	default:
		http.Redirect(w, r, result.ShareLink, http.StatusSeeOther)
	}
}
