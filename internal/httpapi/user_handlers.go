package httpapi

import (
	"net/http"
	"strings"

	"safescribe.org/internal/auth"
)

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	claims, ok := mustClaims(w, r)
	if !ok {
		return
	}
	if claims.Role != auth.RoleAdmin {
		handleAuthError(w, r, auth.ErrForbidden)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": a.auth.Users(r.Context()),
	})
}

func (a *API) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/users/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	claims, ok := mustClaims(w, r)
	if !ok {
		return
	}
	if claims.Role != auth.RoleAdmin {
		handleAuthError(w, r, auth.ErrForbidden)
		return
	}

	identity, err := a.auth.UserByID(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}
