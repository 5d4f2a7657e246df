package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ymori/futalog/internal/domain"
	"github.com/ymori/futalog/internal/geo"
	"github.com/ymori/futalog/internal/service"
	"github.com/ymori/futalog/internal/web/static"
)

const sessionCookie = "futalog_session"

type Server struct {
	ownership *service.OwnershipService
	accounts  *service.AccountService
	templates embed.FS
	mux       *http.ServeMux
	tmplFuncs template.FuncMap
	logger    *slog.Logger
}

func NewServer(ownership *service.OwnershipService, accounts *service.AccountService, tmpl embed.FS, logger *slog.Logger) *Server {
	s := &Server{
		ownership: ownership,
		accounts:  accounts,
		templates: tmpl,
		mux:       http.NewServeMux(),
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"difficultyClass": difficultyClass,
			"prefectureName":  geo.PrefectureName,
			"regionName":      geo.RegionName,
			"lidImage":        lidImage,
			"str":             strVal,
			"inc":             func(i int) int { return i + 1 },
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /", s.handleHome)
	s.mux.HandleFunc("GET /lids/{id}", s.handleLidDetail)
	s.mux.HandleFunc("POST /lids/{id}/ownership", s.handleSetOwnership)
	s.mux.HandleFunc("GET /bulk", s.handleBulkSelect)
	s.mux.HandleFunc("POST /bulk/stage", s.handleBulkStage)
	s.mux.HandleFunc("GET /bulk/confirm", s.handleBulkConfirm)
	s.mux.HandleFunc("POST /bulk/commit", s.handleBulkCommit)
	s.mux.HandleFunc("GET /collectors", s.handleCollectors)
	s.mux.HandleFunc("GET /collectors/{id}", s.handleCollectorDetail)
	s.mux.HandleFunc("GET /account", s.handleAccount)
	s.mux.HandleFunc("POST /account/profile", s.handleUpdateProfile)
	s.mux.HandleFunc("GET /login", s.handleLoginPage)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /signup", s.handleSignupPage)
	s.mux.HandleFunc("POST /signup", s.handleSignup)
	s.mux.HandleFunc("POST /logout", s.handleLogout)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))))
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' https: data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type contextKey string

const accountKey contextKey = "account"

// withSession resolves the session cookie to an account and stores it on the
// request context. Resolution failures degrade to an anonymous viewer.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			acct, err := s.accounts.CurrentAccount(r.Context(), cookie.Value)
			if err != nil {
				s.logger.Warn("session resolution failed", "error", err)
			} else if acct != nil {
				r = r.WithContext(context.WithValue(r.Context(), accountKey, acct))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// currentAccount returns the signed-in account on the request, or nil for an
// anonymous viewer.
func currentAccount(r *http.Request) *domain.Account {
	acct, _ := r.Context().Value(accountKey).(*domain.Account)
	return acct
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.withSession(s.mux))).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// difficultyClass maps a difficulty code to its badge CSS class.
func difficultyClass(code string) string {
	switch strings.ToUpper(code) {
	case "S":
		return "badge badge-s"
	case "A":
		return "badge badge-a"
	case "B":
		return "badge badge-b"
	case "C":
		return "badge badge-c"
	case "I":
		return "badge badge-i"
	default:
		return "badge"
	}
}

// strVal renders an optional string field, empty when unset.
func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// lidImage returns the lid's image URL or the placeholder asset.
func lidImage(url *string) string {
	if url == nil || *url == "" {
		return "/static/no-image.png"
	}
	return *url
}
