package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/dashboard"
	"github.com/bobmcallan/folio/internal/services/session"
)

// handleLanding serves GET / with the static landing copy.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	s.renderPage(w, http.StatusOK, page{Title: "Welcome", GetStarted: true}, render.Landing(dashboard.LandingPage()))
}

// handleLogin shows the sign-in form and imports a backend-issued token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		if _, err := s.app.Sessions.Current(); err == nil {
			redirect(w, r, "/dashboard")
			return
		}
		s.renderPage(w, http.StatusOK, page{Title: "Sign in", Login: true}, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, page{Title: "Sign in", Login: true, Flash: "Invalid form submission"}, "")
		return
	}

	token := strings.TrimSpace(r.PostForm.Get("token"))
	user := models.User{
		Name:  strings.TrimSpace(r.PostForm.Get("name")),
		Email: strings.TrimSpace(r.PostForm.Get("email")),
	}

	if _, err := s.app.Sessions.Login(token, user); err != nil {
		s.logger.Info().Err(err).Msg("Login rejected")
		s.renderPage(w, http.StatusBadRequest, page{
			Title:     "Sign in",
			Login:     true,
			LoginName: user.Name,
			Flash:     loginMessage(err),
		}, "")
		return
	}

	s.dropSession()
	redirect(w, r, "/dashboard")
}

func loginMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		return "That token has expired. Please sign in again."
	case errors.Is(err, session.ErrMissingName):
		return "Please enter your name."
	default:
		return "Sign in failed: " + err.Error()
	}
}

// handleLogout clears the stored session and returns to the login page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.app.Sessions.Logout(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear session")
		WriteError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	s.dropSession()
	redirect(w, r, "/login")
}
