package adminweb

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SombathSOAN/krob-tele/internal/configstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := configstore.New(filepath.Join(t.TempDir(), "config.json"))
	return NewServer(logger, store, ":0", "admin", "s3cret", "test-signing-secret")
}

func login(t *testing.T, s *Server, user, pass string) *http.Response {
	t.Helper()
	form := url.Values{"username": {user}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec.Result()
}

func TestAdmin_RequiresLogin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)

	resp := login(t, s, "admin", "wrong")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?error=1", resp.Header.Get("Location"))
	assert.Empty(t, resp.Cookies())
}

func TestLogin_SetsSessionCookieAndOpensEditor(t *testing.T) {
	s := newTestServer(t)

	resp := login(t, s, "admin", "s3cret")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	cookies := resp.Cookies()
	if !assert.Len(t, cookies, 1) {
		return
	}
	assert.Equal(t, sessionCookie, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Config Editor")
	assert.Contains(t, rec.Body.String(), "{}")
}

func TestSave_RoundTripAndInvalidJSON(t *testing.T) {
	s := newTestServer(t)
	cookie := login(t, s, "admin", "s3cret").Cookies()[0]

	post := func(body string) *httptest.ResponseRecorder {
		form := url.Values{"config": {body}}
		req := httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"greeting":"sousdey"}`)
	assert.Equal(t, http.StatusFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	show := httptest.NewRecorder()
	s.Handler().ServeHTTP(show, req)
	assert.Contains(t, show.Body.String(), "sousdey")

	rec = post(`{"broken":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON")
}

func TestSessionCookie_TamperRejected(t *testing.T) {
	s := newTestServer(t)
	cookie := login(t, s, "admin", "s3cret").Cookies()[0]
	cookie.Value += "x"

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
