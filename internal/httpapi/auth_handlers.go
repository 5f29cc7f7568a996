package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"safescribe.org/internal/audit"
	"safescribe.org/internal/obs"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := a.auth.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), audit.EventUserRegistered,
		zap.String("user_id", identity.ID),
		zap.String("username", identity.Username),
		zap.String("role", string(identity.Role)),
	)

	w.Header().Set("Location", "/api/v1/users/"+identity.ID)
	writeJSON(w, http.StatusCreated, identity)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, claims, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	obs.TokenIssued()
	_ = audit.LogEvent(r.Context(), audit.EventTokenIssued,
		zap.String("user_id", claims.Subject),
		zap.String("username", claims.Username),
		zap.Time("expires_at", claims.ExpiresAt.Time),
	)

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	claims, ok := mustClaims(w, r)
	if !ok {
		return
	}

	if err := a.auth.Logout(r.Context(), claims); err != nil {
		handleAuthError(w, r, err)
		return
	}

	obs.TokenRevoked()
	_ = audit.LogEvent(r.Context(), audit.EventTokenRevoked,
		zap.String("user_id", claims.Subject),
		zap.String("jti", claims.ID),
	)

	w.WriteHeader(http.StatusNoContent)
}
