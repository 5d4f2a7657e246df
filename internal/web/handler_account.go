package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/ymori/futalog/internal/domain"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if currentAccount(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := s.renderPage(w, map[string]any{}, "base.html", "pages/login.html"); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, err := s.accounts.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if errors.Is(err, domain.ErrUnauthorized) {
		w.WriteHeader(http.StatusUnauthorized)
		if rerr := s.renderPage(w,
			map[string]any{"Error": "メールアドレスまたはパスワードが違います"},
			"base.html", "pages/login.html",
		); rerr != nil {
			log.Printf("render page error: %v", rerr)
		}
		return
	}
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		log.Printf("login error: %v", err)
		return
	}

	s.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if currentAccount(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := s.renderPage(w, map[string]any{}, "base.html", "pages/signup.html"); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	_, sess, err := s.accounts.Register(r.Context(),
		r.FormValue("email"), r.FormValue("password"), r.FormValue("nickname"))
	if errors.Is(err, domain.ErrInvalidInput) {
		w.WriteHeader(http.StatusBadRequest)
		if rerr := s.renderPage(w,
			map[string]any{"Error": err.Error()},
			"base.html", "pages/signup.html",
		); rerr != nil {
			log.Printf("render page error: %v", rerr)
		}
		return
	}
	if err != nil {
		http.Error(w, "signup failed", http.StatusInternalServerError)
		log.Printf("signup error: %v", err)
		return
	}

	s.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.accounts.Logout(r.Context(), cookie.Value); err != nil {
			log.Printf("logout error: %v", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	acct := currentAccount(r)
	if acct == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := s.renderPage(w,
		map[string]any{"Account": acct},
		"base.html", "pages/account.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	acct := currentAccount(r)
	if acct == nil {
		http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	err := s.accounts.UpdateProfile(r.Context(), acct.ID,
		r.FormValue("nickname"), r.FormValue("comment"), r.FormValue("friend_code"))
	if errors.Is(err, domain.ErrInvalidInput) {
		w.WriteHeader(http.StatusBadRequest)
		if rerr := s.renderPage(w,
			map[string]any{"Account": acct, "Error": err.Error()},
			"base.html", "pages/account.html",
		); rerr != nil {
			log.Printf("render page error: %v", rerr)
		}
		return
	}
	if err != nil {
		writeServiceError(w, err)
		log.Printf("update profile error: %v", err)
		return
	}

	http.Redirect(w, r, "/account", http.StatusSeeOther)
}
