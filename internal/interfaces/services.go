package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// SessionManager owns the session lifecycle
type SessionManager interface {
	// Login stores a backend-issued token and user identity
	Login(token string, user models.User) (*models.Session, error)

	// Current returns the active session or session.ErrNoSession
	Current() (*models.Session, error)

	// Logout removes the token and user
	Logout() error
}

// AnalyticsService runs the aggregation routine
type AnalyticsService interface {
	// Analyze builds the distribution and performance series for a timeframe
	Analyze(ctx context.Context, sess *models.Session, portfolio *models.Portfolio, tf models.Timeframe) (*models.Analytics, error)
}
