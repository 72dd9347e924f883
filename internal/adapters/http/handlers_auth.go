package web

import (
	"errors"
	"net/http"

	"sgc/internal/adapters/http/middleware"
	"sgc/internal/application/orchestrators"
)

const dashboardPath = "/admin/dashboard"

// handleAdminLanding serves GET /admin: a signed-in admin goes to the dashboard,
// anyone else sees the entry page.
func handleAdminLanding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "admin_landing.html", nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin handles GET (form) and POST (sign in) for /admin/login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", nil)

	case http.MethodPost:
		var req loginRequest
		jsonBody := isJSONBody(r)
		if jsonBody {
			if err := strictDecode(r, &req); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}
		} else {
			req.Email = r.FormValue("email")
			req.Password = r.FormValue("password")
		}

		result, err := orchestrators.ExecuteLogin(r.Context(),
			orchestrators.LoginInput{Email: req.Email, Password: req.Password},
			orchestrators.LoginDeps{
				AccountStore: stores.AccountStore,
				MemberStore:  stores.MemberStore,
				Now:          timeNow,
			})
		switch {
		case errors.Is(err, orchestrators.ErrRoleNotAllowed):
			// Credentials were right but the role gate refused: no session survives.
			if token := middleware.SessionToken(r); token != "" {
				sessions.Delete(token)
			}
			middleware.ClearSessionCookie(w)
			if jsonBody {
				writeJSONError(w, http.StatusForbidden, err)
				return
			}
			redirectWithFlash(w, r, middleware.LoginPath, err.Error())
			return
		case errors.Is(err, orchestrators.ErrInvalidCredentials), errors.Is(err, orchestrators.ErrAccountLocked):
			if jsonBody {
				writeJSONError(w, http.StatusUnauthorized, err)
				return
			}
			renderTemplateStatus(w, r, "login.html", http.StatusUnauthorized, map[string]any{
				"Error": err.Error(),
				"Email": req.Email,
			})
			return
		case err != nil:
			internalError(w, err)
			return
		}

		token, err := sessions.Create(middleware.Session{
			AccountID: result.AccountID,
			MemberID:  result.MemberID,
			Email:     result.Email,
			Name:      result.Name,
			Role:      result.Role,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		middleware.SetSessionCookie(w, token)
		if jsonBody {
			writeJSON(w, http.StatusOK, result)
			return
		}
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

// handleLogout handles POST /admin/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
