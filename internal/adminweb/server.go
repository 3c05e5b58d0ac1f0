// Package adminweb serves the password-protected configuration editor: a
// login form, and a single page with the JSON document in a textarea.
package adminweb

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/SombathSOAN/krob-tele/internal/configstore"
)

const sessionCookie = "admin_session"

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><body>
  <h1>Admin Login</h1>
  <form method="post" action="/login">
    <input type="text" name="username" placeholder="Username" required><br>
    <input type="password" name="password" placeholder="Password" required><br>
    <button type="submit">Login</button>
  </form>
  {{if .Error}}<p style="color:red">Invalid credentials</p>{{end}}
</body></html>`))

var adminTmpl = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html><body>
  <h1>Config Editor</h1>
  <form method="post" action="/admin">
    <textarea name="config" rows="20" cols="60">{{.Config}}</textarea><br>
    <button type="submit">Save</button>
  </form>
  <p><a href="/logout">Logout</a></p>
</body></html>`))

type Server struct {
	logger *slog.Logger
	store  *configstore.Store
	user   string
	pass   string
	secret []byte
	srv    *http.Server
}

func NewServer(logger *slog.Logger, store *configstore.Store, addr, user, pass, secret string) *Server {
	s := &Server{
		logger: logger,
		store:  store,
		user:   user,
		pass:   pass,
		secret: []byte(secret),
	}

	r := mux.NewRouter()
	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)
	r.Handle("/admin", s.requireLogin(http.HandlerFunc(s.handleEditor))).Methods(http.MethodGet)
	r.Handle("/admin", s.requireLogin(http.HandlerFunc(s.handleSave))).Methods(http.MethodPost)
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusFound)
	})

	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

func (s *Server) Listen() error {
	s.logger.Info("Starting admin panel", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || !s.validSession(cookie.Value) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validSession(tokenString string) bool {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	return err == nil && token.Valid
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	_ = loginTmpl.Execute(w, map[string]any{"Error": r.URL.Query().Get("error") != ""})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("username") != s.user || r.FormValue("password") != s.pass {
		s.logger.Warn("Admin login rejected", "remote", r.RemoteAddr)
		http.Redirect(w, r, "/login?error=1", http.StatusFound)
		return
	}

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign admin session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info("Admin logged in", "remote", r.RemoteAddr)
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load()
	if err != nil {
		s.logger.Error("Failed to load config document", "error", err)
		doc = json.RawMessage(fmt.Sprintf(`{"error": %q}`, err.Error()))
	}

	var pretty map[string]any
	display := string(doc)
	if err := json.Unmarshal(doc, &pretty); err == nil {
		if b, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			display = string(b)
		}
	}
	_ = adminTmpl.Execute(w, map[string]any{"Config": display})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("config")
	if err := s.store.Save(json.RawMessage(raw)); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Info("Config document updated", "bytes", len(raw))
	http.Redirect(w, r, "/admin", http.StatusFound)
}
