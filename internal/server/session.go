package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/dashboard"
	"github.com/bobmcallan/folio/internal/services/session"
)

// sessionState is the dashboard state bound to one signed-in token.
type sessionState struct {
	token string
	ctrl  *dashboard.Controller

	pollOnce sync.Once

	mu     sync.Mutex
	assets map[string]*dashboard.AssetView
}

// asset returns the cached detail view for symbol, creating it on first use.
func (st *sessionState) asset(symbol string) *dashboard.AssetView {
	key := strings.ToUpper(symbol)

	st.mu.Lock()
	defer st.mu.Unlock()
	if v, ok := st.assets[key]; ok {
		return v
	}
	v := st.ctrl.Asset(key)
	st.assets[key] = v
	return v
}

func (st *sessionState) close() {
	st.ctrl.Close()
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, v := range st.assets {
		v.Close()
	}
	st.assets = nil
}

// requireSession returns the signed-in session, or redirects to /login and
// returns nil.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) *models.Session {
	sess, err := s.app.Sessions.Current()
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			s.logger.Info().Err(err).Msg("Session no longer valid")
		}
		s.dropSession()
		redirect(w, r, "/login")
		return nil
	}
	return sess
}

// state returns the dashboard state for sess, replacing state left over
// from a different token.
func (s *Server) state(sess *models.Session) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.token == sess.Token {
		return s.current
	}
	if s.current != nil {
		s.current.close()
	}
	s.current = &sessionState{
		token:  sess.Token,
		ctrl:   s.app.NewController(sess),
		assets: make(map[string]*dashboard.AssetView),
	}
	return s.current
}

// dropSession stops polling and forgets the dashboard state.
func (s *Server) dropSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.close()
		s.current = nil
	}
}

// ensurePortfolio fetches the portfolio once per state, then starts the
// quote poller so its first run sees the portfolio's symbols.
func (s *Server) ensurePortfolio(ctx context.Context, st *sessionState) error {
	if !st.ctrl.Loaded() {
		if _, err := st.ctrl.Refresh(ctx); err != nil {
			return err
		}
	}
	st.pollOnce.Do(func() { st.ctrl.StartPolling(s.baseCtx) })
	return nil
}

// signOutIfUnauthorized clears the session when the backend rejected the
// token. It reports whether a redirect was written.
func (s *Server) signOutIfUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !session.IsSignedOut(err) {
		return false
	}
	s.logger.Info().Err(err).Msg("Backend rejected session, signing out")
	if lerr := s.app.Sessions.Logout(); lerr != nil {
		s.logger.Warn().Err(lerr).Msg("Failed to clear session")
	}
	s.dropSession()
	redirect(w, r, "/login")
	return true
}
