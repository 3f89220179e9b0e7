package folioapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

type quotesRequest struct {
	Symbols []string `json:"symbols"`
}

// GetQuotes retrieves live quotes for symbols. An empty symbol list returns
// no quotes without calling the backend.
func (c *Client) GetQuotes(ctx context.Context, sess *models.Session, symbols []string) ([]models.Quote, error) {
	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	var quotes []models.Quote
	if err := c.do(ctx, sess, http.MethodPost, "/api/market/quotes", quotesRequest{Symbols: cleaned}, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// GetHistorical retrieves the close history for one symbol
func (c *Client) GetHistorical(ctx context.Context, sess *models.Session, symbol string, period string) ([]models.HistoricalPoint, error) {
	path := "/api/market/historical/" + url.PathEscape(strings.TrimSpace(symbol))
	if period != "" {
		path += "?" + url.Values{"period": {period}}.Encode()
	}

	var points []models.HistoricalPoint
	if err := c.do(ctx, sess, http.MethodGet, path, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}
