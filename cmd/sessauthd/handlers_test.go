package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sessauth "github.com/sessauth/sessauth"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	cfg := sessauth.DefaultConfig()
	cfg.Audit.Enabled = false

	engine, err := sessauth.New().
		WithConfig(cfg).
		WithSecret([]byte("0123456789abcdef0123456789abcdef")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return newServer(engine, defaultServerConfig())
}

func doLogin(t *testing.T, router http.Handler, loginname string) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"loginname":"`+loginname+`","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "access_token" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("login response carries no access token cookie")
	return nil
}

func TestLoginEchoesLoginname(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"loginname":"alice","password":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Loginname != "alice" {
		t.Fatalf("expected loginname echoed back, got %q", resp.Loginname)
	}
}

func TestLoginRejectsBadBody(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSeenUsersRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	// anonymous
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/seen-users", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	// regular user
	bobCookie := doLogin(t, router, "bob")
	req := httptest.NewRequest(http.MethodGet, "/api/seen-users", nil)
	req.AddCookie(bobCookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("regular: expected 403, got %d", rec.Code)
	}

	// admin
	adminCookie := doLogin(t, router, "admin")
	req = httptest.NewRequest(http.MethodGet, "/api/seen-users", nil)
	req.AddCookie(adminCookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rec.Code)
	}

	var body struct {
		LoginInfos []sessauth.StoredLoginInfo `json:"login_infos"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(body.LoginInfos) != 2 {
		t.Fatalf("expected 2 seen users, got %d", len(body.LoginInfos))
	}
	if body.LoginInfos[0].Loginname != "admin" || body.LoginInfos[1].Loginname != "bob" {
		t.Fatalf("unexpected order: %+v", body.LoginInfos)
	}
}

func TestSeenUserAtNotFound(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	adminCookie := doLogin(t, router, "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/seen-users/5", nil)
	req.AddCookie(adminCookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLogoutRevokesCookieToken(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	cookie := doLogin(t, router, "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}

	// the old token no longer opens protected routes
	req = httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestEchoEndpoints(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	cases := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/api/echo/foo/and/bar", http.StatusOK, `"this":"foo"`},
		{"/api/echo-path", http.StatusOK, `"path":"/api/echo-path"`},
		{"/api/echo-query-params?key0=value0", http.StatusOK, `"key0"`},
		{"/api/echo-uuid-in-path/88292365-1919-4e00-b406-6988740f395c", http.StatusOK, "88292365-1919-4e00-b406-6988740f395c"},
		{"/api/echo-uuid-in-path/not-a-uuid", http.StatusBadRequest, ""},
		{"/api/echo-parsed-query-params?uuid=88292365-1919-4e00-b406-6988740f395c&list=a&list=b", http.StatusOK, `"list":["a","b"]`},
		{"/api/echo-parsed-query-params?uuid=nope", http.StatusBadRequest, ""},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

		if rec.Code != tc.wantCode {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.wantCode, rec.Code)
		}
		if tc.wantBody != "" && !strings.Contains(rec.Body.String(), tc.wantBody) {
			t.Fatalf("%s: body %q missing %q", tc.path, rec.Body.String(), tc.wantBody)
		}
	}
}

func TestCreateUUIDv4(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/create-uuid-v4", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := len(strings.TrimSpace(rec.Body.String())); got != 36 {
		t.Fatalf("expected a hyphenated uuid, got %q", rec.Body.String())
	}
}

func TestIndexPageVariesWithIdentity(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `href="/login"`) {
		t.Fatalf("anonymous index should link to login, got %d", rec.Code)
	}

	cookie := doLogin(t, router, "alice")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Logout") {
		t.Fatal("logged-in index should offer logout")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	doLogin(t, router, "alice")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sessauth_login_success_total 1") {
		t.Fatalf("metrics missing login counter:\n%s", rec.Body.String())
	}
}
