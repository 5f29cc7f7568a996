package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"safescribe.org/internal/audit"
	"safescribe.org/internal/auth"
)

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (a *API) handleNotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createNote(w, r)
	case http.MethodGet:
		a.listNotes(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustClaims(w, r)
	if !ok {
		return
	}
	if err := auth.Authorize(claims, auth.OpCreate, claims.Subject); err != nil {
		a.denyAccess(w, r, claims, "note.create", err)
		return
	}

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	note, err := a.notes.Create(r.Context(), claims.Subject, req.Title, req.Content)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/notes/"+note.ID)
	writeJSON(w, http.StatusCreated, note)
}

func (a *API) listNotes(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustClaims(w, r)
	if !ok {
		return
	}

	list, err := a.notes.ListByOwner(r.Context(), claims.Subject)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": list,
	})
}

func (a *API) handleNoteByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/notes/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	claims, ok := mustClaims(w, r)
	if !ok {
		return
	}

	note, err := a.notes.Get(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if err := auth.Authorize(claims, auth.OpRead, note.OwnerID); err != nil {
			a.denyAccess(w, r, claims, "note.read", err)
			return
		}
		writeJSON(w, http.StatusOK, note)

	case http.MethodPut:
		if err := auth.Authorize(claims, auth.OpUpdate, note.OwnerID); err != nil {
			a.denyAccess(w, r, claims, "note.update", err)
			return
		}
		var req noteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := a.notes.Update(r.Context(), id, req.Title, req.Content)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := auth.Authorize(claims, auth.OpDelete, note.OwnerID); err != nil {
			a.denyAccess(w, r, claims, "note.delete", err)
			return
		}
		if err := a.notes.Delete(r.Context(), id); err != nil {
			handleAuthError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) denyAccess(w http.ResponseWriter, r *http.Request, claims *auth.Claims, action string, err error) {
	_ = audit.LogEvent(r.Context(), audit.EventAccessDenied,
		zap.String("user_id", claims.Subject),
		zap.String("role", string(claims.Role)),
		zap.String("action", action),
	)
	handleAuthError(w, r, err)
}
