// Package session manages the signed-in identity kept in the local store.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Local store keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrNoSession means no token or user is stored.
	ErrNoSession = errors.New("not logged in")
	// ErrSessionExpired means the stored token's exp claim has passed.
	ErrSessionExpired = errors.New("session expired")
	// ErrMissingName means neither the caller nor the token supplied a display name.
	ErrMissingName = errors.New("user name is required")
)

// Manager implements interfaces.SessionManager
type Manager struct {
	store  interfaces.LocalStore
	logger *common.Logger
	now    func() time.Time
}

// NewManager creates a session manager over a local store
func NewManager(store interfaces.LocalStore, logger *common.Logger) *Manager {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// tokenClaims holds what the client reads from a JWT without verifying it.
// Verification is the backend's job.
type tokenClaims struct {
	ExpiresAt time.Time
	Name      string
	Email     string
	Subject   string
}

// parseClaims reads exp/name/email/sub from a JWT. Opaque tokens return
// zero claims and no error.
func parseClaims(token string) tokenClaims {
	var tc tokenClaims
	if strings.Count(token, ".") != 2 {
		return tc
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tc
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		tc.Subject = sub
	}
	if name, ok := claims["name"].(string); ok {
		tc.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		tc.Email = email
	}
	return tc
}

// Login stores a backend-issued token and the user identity. Missing user
// fields are filled from the token's claims when it is a JWT.
func (m *Manager) Login(token string, user models.User) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}

	claims := parseClaims(token)
	user.Name = strings.TrimSpace(user.Name)
	if user.Name == "" {
		user.Name = claims.Name
	}
	if user.Email == "" {
		user.Email = claims.Email
	}
	if user.ID == "" {
		user.ID = claims.Subject
	}
	if user.Name == "" {
		return nil, ErrMissingName
	}

	sess := &models.Session{Token: token, User: user, ExpiresAt: claims.ExpiresAt}
	if sess.Expired(m.now()) {
		return nil, ErrSessionExpired
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := m.store.SetItem(KeyToken, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	if err := m.store.SetItem(KeyUser, string(userJSON)); err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	m.logger.Info().Str("user", user.Name).Msg("Logged in")
	return sess, nil
}

// Current returns the stored session. A missing token, a missing or
// unreadable user, or a user without a name is ErrNoSession. An expired JWT
// is cleared and reported as ErrSessionExpired.
func (m *Manager) Current() (*models.Session, error) {
	token, ok, err := m.store.GetItem(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if !ok || strings.TrimSpace(token) == "" {
		return nil, ErrNoSession
	}

	raw, ok, err := m.store.GetItem(KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	if !ok {
		return nil, ErrNoSession
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn().Err(err).Msg("Stored user is not valid JSON")
		return nil, ErrNoSession
	}
	if user.Name == "" {
		return nil, ErrNoSession
	}

	sess := &models.Session{
		Token:     token,
		User:      user,
		ExpiresAt: parseClaims(token).ExpiresAt,
	}
	if sess.Expired(m.now()) {
		m.logger.Info().Time("expired_at", sess.ExpiresAt).Msg("Session expired, clearing")
		if err := m.Logout(); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout removes both keys.
func (m *Manager) Logout() error {
	if err := m.store.RemoveItem(KeyToken); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	if err := m.store.RemoveItem(KeyUser); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	return nil
}

// IsSignedOut reports whether err means the user has to log in again.
func IsSignedOut(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrSessionExpired) ||
		models.KindOf(err) == models.KindUnauthorized
}

var _ interfaces.SessionManager = (*Manager)(nil)
