package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/roles":                     "/v1/roles",
		"/v1/roles/abc":                 "/v1/roles/:id",
		"/v1/roles/abc/permissions":     "/v1/roles/:id/permissions",
		"/v1/members/abc":               "/v1/members/:id",
		"/v1/modules/m1":                "/v1/modules/:id",
		"/v1/assignments/abc/status":    "/v1/assignments/:id/status",
		"/v1/assignments/abc/creds":     "/v1/assignments/abc/creds",
		"/v1/assignments/abc/access":    "/v1/assignments/:id/access",
		"/v1/assignments?user_id=u1":    "/v1/assignments",
		"/v1/permissions?category=team": "/v1/permissions",
		"/v1/assignments/a/b/c":         "/v1/assignments/a/b/c",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
