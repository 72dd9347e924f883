package web

import (
	"errors"
	"fmt"
	"net/http"

	"sgc/internal/application/listutil"
	"sgc/internal/application/orchestrators"
	"sgc/internal/application/projections"
	"sgc/internal/domain/member"
)

const membersPath = "/admin/members"

type addMemberRequest struct {
	Name         string `json:"name"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	AcademicYear string `json:"academic_year"`
}

// memberUserErrors are roster failures the admin can correct in the form.
var memberUserErrors = []error{
	member.ErrEmptyName, member.ErrInvalidEmail, member.ErrInvalidRole,
	member.ErrInvalidYear, member.ErrInvalidPhone, member.ErrDuplicate,
	member.ErrNameTooLong, member.ErrDepartmentTooLong, member.ErrMobileTooLong,
	orchestrators.ErrEmptySelection,
}

func rosterDeps() orchestrators.RosterDeps {
	return orchestrators.RosterDeps{MemberStore: stores.MemberStore, GenerateID: generateID}
}

// handleMembers handles GET (list) and POST (add) for /admin/members.
func handleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		result, err := projections.QueryRoster(ctx,
			projections.RosterQuery{List: listutil.ParseParams(r.URL.Query())},
			projections.RosterDeps{MemberStore: stores.MemberStore})
		if err != nil {
			internalError(w, err)
			return
		}
		if !isHTMLRequest(r) {
			writeJSON(w, http.StatusOK, result)
			return
		}
		renderTemplate(w, r, "members.html", membersPage(result, nil, addMemberRequest{}))

	case http.MethodPost:
		var req addMemberRequest
		jsonBody := isJSONBody(r)
		if jsonBody {
			if err := strictDecode(r, &req); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}
		} else {
			req = addMemberRequest{
				Name:         r.FormValue("name"),
				Department:   r.FormValue("department"),
				Role:         r.FormValue("role"),
				Email:        r.FormValue("email"),
				Mobile:       r.FormValue("mobile"),
				AcademicYear: r.FormValue("academic_year"),
			}
		}
		m, err := orchestrators.ExecuteAddMember(ctx, orchestrators.AddMemberInput(req), rosterDeps())
		if err != nil && !isUserError(err, memberUserErrors...) {
			internalError(w, err)
			return
		}
		if jsonBody {
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, err)
				return
			}
			writeJSON(w, http.StatusCreated, m)
			return
		}
		if err != nil {
			result, qerr := projections.QueryRoster(ctx, projections.RosterQuery{},
				projections.RosterDeps{MemberStore: stores.MemberStore})
			if qerr != nil {
				internalError(w, qerr)
				return
			}
			renderTemplateStatus(w, r, "members.html", http.StatusBadRequest, membersPage(result, err, req))
			return
		}
		redirectWithFlash(w, r, membersPath, fmt.Sprintf("Added %s", m.Name))

	default:
		methodNotAllowed(w)
	}
}

func membersPage(result projections.RosterResult, formErr error, form addMemberRequest) map[string]any {
	data := map[string]any{
		"Result":         result,
		"Roles":          member.ValidRoles,
		"Years":          member.ValidYears,
		"PerPageOptions": listutil.PerPageOptions,
		"Form":           form,
	}
	if formErr != nil {
		data["Error"] = formErr.Error()
	}
	return data
}

type updateMemberRequest struct {
	ID           string `json:"id"`
	AcademicYear string `json:"academic_year"`
	Role         string `json:"role"`
}

// handleMemberEdit handles POST /admin/members/edit; only year and role change.
func handleMemberEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req updateMemberRequest
	jsonBody := isJSONBody(r)
	if jsonBody {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	} else {
		req = updateMemberRequest{
			ID:           r.FormValue("id"),
			AcademicYear: r.FormValue("academic_year"),
			Role:         r.FormValue("role"),
		}
	}

	err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput(req), rosterDeps())
	status := http.StatusOK
	switch {
	case errors.Is(err, member.ErrNotFound):
		status = http.StatusNotFound
	case err != nil && isUserError(err, memberUserErrors...):
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
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
		return
	}
	flash := "Member updated"
	if err != nil {
		flash = err.Error()
	}
	redirectWithFlash(w, r, membersPath, flash)
}

type deleteMembersRequest struct {
	IDs []string `json:"ids"`
}

// handleMembersDelete handles POST /admin/members/delete.
// A form post without confirm=yes renders the confirmation step instead of deleting.
func handleMembersDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	ctx := r.Context()
	var req deleteMembersRequest
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
		req.IDs = r.PostForm["ids"]
	}

	if !jsonBody && r.PostFormValue("confirm") != "yes" {
		if len(req.IDs) == 0 {
			redirectWithFlash(w, r, membersPath, orchestrators.ErrEmptySelection.Error())
			return
		}
		selected := make([]member.Member, 0, len(req.IDs))
		for _, id := range req.IDs {
			m, err := stores.MemberStore.GetByID(ctx, id)
			if errors.Is(err, member.ErrNotFound) {
				continue
			}
			if err != nil {
				internalError(w, err)
				return
			}
			selected = append(selected, m)
		}
		renderTemplate(w, r, "members_confirm_delete.html", map[string]any{"Members": selected})
		return
	}

	n, err := orchestrators.ExecuteDeleteMembers(ctx, orchestrators.DeleteMembersInput{IDs: req.IDs}, rosterDeps())
	if err != nil && !errors.Is(err, orchestrators.ErrEmptySelection) {
		internalError(w, err)
		return
	}
	if jsonBody {
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
		return
	}
	if err != nil {
		redirectWithFlash(w, r, membersPath, err.Error())
		return
	}
	redirectWithFlash(w, r, membersPath, fmt.Sprintf("Deleted %d member(s)", n))
}
