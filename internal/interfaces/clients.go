// Package interfaces defines service contracts for folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// PortfolioClient provides access to the backend portfolio endpoints
type PortfolioClient interface {
	// GetPortfolio retrieves the signed-in user's portfolio
	GetPortfolio(ctx context.Context, sess *models.Session) (*models.Portfolio, error)

	// AddInvestment creates an investment and returns the updated portfolio
	AddInvestment(ctx context.Context, sess *models.Session, inv models.NewInvestment) (*models.Portfolio, error)

	// UpdatePrices asks the backend to refresh stored prices
	UpdatePrices(ctx context.Context, sess *models.Session) (*models.Portfolio, error)
}

// MarketClient provides access to the backend market-data endpoints
type MarketClient interface {
	// GetQuotes retrieves live quotes for symbols
	GetQuotes(ctx context.Context, sess *models.Session, symbols []string) ([]models.Quote, error)

	// GetHistorical retrieves the close history for one symbol
	GetHistorical(ctx context.Context, sess *models.Session, symbol string, period string) ([]models.HistoricalPoint, error)
}

// APIClient is the full backend surface
type APIClient interface {
	PortfolioClient
	MarketClient
}
