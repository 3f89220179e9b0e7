package folioapi

import (
	"context"
	"net/http"

	"github.com/bobmcallan/folio/internal/models"
)

// GetPortfolio retrieves the signed-in user's portfolio
func (c *Client) GetPortfolio(ctx context.Context, sess *models.Session) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := c.do(ctx, sess, http.MethodGet, "/api/portfolio", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddInvestment creates an investment and returns the updated portfolio
func (c *Client) AddInvestment(ctx context.Context, sess *models.Session, inv models.NewInvestment) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := c.do(ctx, sess, http.MethodPost, "/api/portfolio/investments", inv, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePrices asks the backend to refresh stored prices
func (c *Client) UpdatePrices(ctx context.Context, sess *models.Session) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := c.do(ctx, sess, http.MethodPost, "/api/portfolio/update-prices", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
