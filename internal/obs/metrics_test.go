package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/api/v1/notes":                 "/api/v1/notes",
		"/api/v1/notes/abc":             "/api/v1/notes/:id",
		"/api/v1/notes/abc/extra":       "/api/v1/notes/abc/extra",
		"/api/v1/users/42":              "/api/v1/users/:id",
		"/api/v1/auth/login":            "/api/v1/auth/login",
		"/api/v1/notes/abc?fields=body": "/api/v1/notes/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
