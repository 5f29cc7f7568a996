package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"safescribe.org/internal/auth"
	"safescribe.org/internal/notes"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	creds := auth.NewCredentialStore()
	codec, err := auth.NewTokenCodec("test-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	svc, err := auth.NewService(creds, codec, auth.NewMemoryBlacklist())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	api := New(svc, notes.NewInMemory(), ReadyProbe{}, Config{
		Version:       "test",
		RateBurst:     100,
		RatePerSecond: 100,
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) register(username, password, role string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: unexpected status %d", username, resp.StatusCode)
	}
}

func (c *apiClient) login(username, password string) string {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: unexpected status %d", username, resp.StatusCode)
	}
	payload := decode[tokenResponse](c.t, resp)
	if payload.Token == "" {
		c.t.Fatal("empty token issued")
	}
	return payload.Token
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	c := newTestAPI(t)
	c.register("alice", "s3cret-pw", "editor")

	// duplicate registration conflicts, regardless of case
	resp := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "ALICE",
		"password": "other-pw",
		"role":     "reader",
	}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", resp.StatusCode)
	}

	token := c.login("alice", "s3cret-pw")

	// token works
	resp = c.do(http.MethodGet, "/api/v1/notes", nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", resp.StatusCode)
	}

	// logout revokes it
	resp = c.do(http.MethodPost, "/api/v1/auth/logout", nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on logout, got %d", resp.StatusCode)
	}

	// revoked token is rejected even though signature and expiry still hold
	resp = c.do(http.MethodGet, "/api/v1/notes", nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	c := newTestAPI(t)
	c.register("bob", "correct-pw", "reader")

	for name, body := range map[string]map[string]string{
		"unknown user":   {"username": "nobody", "password": "whatever"},
		"wrong password": {"username": "bob", "password": "wrong"},
	} {
		resp := c.do(http.MethodPost, "/api/v1/auth/login", body, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
		payload := decode[map[string]any](t, resp)
		if payload["error"] != "invalid credentials" {
			t.Fatalf("%s: expected generic message, got %v", name, payload["error"])
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	c := newTestAPI(t)

	for name, body := range map[string]map[string]string{
		"empty username": {"username": "", "password": "pw", "role": "reader"},
		"empty password": {"username": "carol", "password": "", "role": "reader"},
		"unknown role":   {"username": "carol", "password": "pw", "role": "superuser"},
	} {
		resp := c.do(http.MethodPost, "/api/v1/auth/register", body, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
	}
}

func TestNoteOwnershipAndRoles(t *testing.T) {
	c := newTestAPI(t)
	c.register("editor", "editor-pw", "editor")
	c.register("reader", "reader-pw", "reader")
	c.register("admin", "admin-pw", "admin")
	editorToken := c.login("editor", "editor-pw")
	readerToken := c.login("reader", "reader-pw")
	adminToken := c.login("admin", "admin-pw")

	// reader may not create
	resp := c.do(http.MethodPost, "/api/v1/notes", noteRequest{Title: "nope"}, readerToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("reader create: expected 403, got %d", resp.StatusCode)
	}

	// editor creates
	resp = c.do(http.MethodPost, "/api/v1/notes", noteRequest{Title: "plan", Content: "v1"}, editorToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("editor create: expected 201, got %d", resp.StatusCode)
	}
	created := decode[notes.Note](t, resp)
	notePath := "/api/v1/notes/" + created.ID

	// another non-admin cannot read someone else's note
	resp = c.do(http.MethodGet, notePath, nil, readerToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("reader read foreign note: expected 403, got %d", resp.StatusCode)
	}

	// admin bypasses ownership
	resp = c.do(http.MethodGet, notePath, nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin read: expected 200, got %d", resp.StatusCode)
	}

	// owner updates
	resp = c.do(http.MethodPut, notePath, noteRequest{Title: "plan", Content: "v2"}, editorToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner update: expected 200, got %d", resp.StatusCode)
	}
	updated := decode[notes.Note](t, resp)
	if updated.Content != "v2" {
		t.Fatalf("update not applied: %+v", updated)
	}

	// editor cannot delete, admin can
	resp = c.do(http.MethodDelete, notePath, nil, editorToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("editor delete: expected 403, got %d", resp.StatusCode)
	}
	resp = c.do(http.MethodDelete, notePath, nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", resp.StatusCode)
	}
	resp = c.do(http.MethodGet, notePath, nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestListNotesIsOwnerScoped(t *testing.T) {
	c := newTestAPI(t)
	c.register("one", "one-pw", "editor")
	c.register("two", "two-pw", "editor")
	oneToken := c.login("one", "one-pw")
	twoToken := c.login("two", "two-pw")

	resp := c.do(http.MethodPost, "/api/v1/notes", noteRequest{Title: "mine"}, oneToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	resp = c.do(http.MethodGet, "/api/v1/notes", nil, twoToken)
	payload := decode[struct {
		Notes []notes.Note `json:"notes"`
	}](t, resp)
	if len(payload.Notes) != 0 {
		t.Fatalf("expected empty list for other user, got %d notes", len(payload.Notes))
	}
}

func TestUsersEndpointsAdminOnly(t *testing.T) {
	c := newTestAPI(t)
	c.register("admin", "admin-pw", "admin")
	c.register("editor", "editor-pw", "editor")
	adminToken := c.login("admin", "admin-pw")
	editorToken := c.login("editor", "editor-pw")

	resp := c.do(http.MethodGet, "/api/v1/users", nil, editorToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("editor list users: expected 403, got %d", resp.StatusCode)
	}

	resp = c.do(http.MethodGet, "/api/v1/users", nil, adminToken)
	payload := decode[struct {
		Users []auth.Identity `json:"users"`
	}](t, resp)
	if len(payload.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(payload.Users))
	}
	for _, u := range payload.Users {
		if u.PasswordHash != "" {
			t.Fatalf("password hash leaked for %s", u.Username)
		}
	}

	resp = c.do(http.MethodGet, "/api/v1/users/"+payload.Users[0].ID, nil, adminToken)
	user := decode[auth.Identity](t, resp)
	if user.ID != payload.Users[0].ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	resp = c.do(http.MethodGet, "/api/v1/users/does-not-exist", nil, adminToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing user: expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	c := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz", "/v1/info"} {
		resp := c.do(http.MethodGet, path, nil, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}

	resp := c.do(http.MethodGet, "/openapi.yaml", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("openapi: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml; charset=utf-8" {
		t.Fatalf("unexpected content type: %s", ct)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodGet, "/api/v1/auth/register", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
		t.Fatalf("unexpected Allow header: %s", allow)
	}
}
