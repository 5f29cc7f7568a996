package httpapi

import (
	"context"
	"net/http"
	"time"

	"safescribe.org/api/spec"
	"safescribe.org/internal/auth"
	"safescribe.org/internal/notes"
	"safescribe.org/internal/obs"
)

// ReadyProbe reports whether the service's backing stores are reachable. A
// nil Ping means there is nothing external to check.
type ReadyProbe struct {
	Ping func(ctx context.Context) error
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.Ping == nil {
		return nil
	}
	return rp.Ping(ctx)
}

// Config carries the HTTP-layer knobs.
type Config struct {
	Version       string
	RateBurst     int
	RatePerSecond int
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	notes      notes.Service
	readyProbe ReadyProbe
	version    string
}

func New(authSvc *auth.Service, noteStore notes.Service, rp ReadyProbe, cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       authSvc,
		notes:      noteStore,
		readyProbe: rp,
		version:    cfg.Version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// OpenAPI YAML
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth: login gets a per-IP token bucket, brute force is priced in CPU
	// (bcrypt) and in request budget
	a.mux.HandleFunc("/api/v1/auth/register", a.handleRegister)
	a.mux.Handle("/api/v1/auth/login",
		RateLimit(http.HandlerFunc(a.handleLogin), cfg.RateBurst, cfg.RatePerSecond))
	a.mux.HandleFunc("/api/v1/auth/logout", a.handleLogout)

	// users (admin only)
	a.mux.HandleFunc("/api/v1/users", a.handleUsers)
	a.mux.HandleFunc("/api/v1/users/", a.handleUserByID)

	// notes
	a.mux.HandleFunc("/api/v1/notes", a.handleNotes)
	a.mux.HandleFunc("/api/v1/notes/", a.handleNoteByID)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "safescribe-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "safescribe-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}
