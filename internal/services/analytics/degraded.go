package analytics

import (
	"errors"

	"github.com/bobmcallan/folio/internal/models"
)

// Messages shown when live market data is unavailable.
const (
	MsgSymbolNotFound = "One or more stock symbols could not be found. Using stored values."
	MsgNoValidSymbols = "No valid stock symbols found in your portfolio. Using stored values."
	MsgNoValidQuotes  = "Unable to fetch current market data. Using stored values."
	MsgInvalidPeriod  = "Invalid time period selected. Using stored values."
	MsgStoredDefault  = "Using stored market data values."
)

// backendMessager is implemented by errors that carry the backend's
// human-readable message.
type backendMessager interface {
	BackendMessage() string
}

// DegradedMessage maps a market data failure to the message shown beside
// the stored-values charts.
func DegradedMessage(err error) string {
	switch models.KindOf(err) {
	case models.KindSymbolNotFound:
		return MsgSymbolNotFound
	case models.KindNoValidSymbols:
		return MsgNoValidSymbols
	case models.KindNoValidQuotes:
		return MsgNoValidQuotes
	case models.KindInvalidPeriod, models.KindInvalidInterval:
		return MsgInvalidPeriod
	case models.KindBackend:
		var bm backendMessager
		if errors.As(err, &bm) && bm.BackendMessage() != "" {
			return bm.BackendMessage()
		}
		return MsgStoredDefault
	case models.KindTransport, models.KindUnauthorized, models.KindDecode, models.KindUnknown:
		return MsgStoredDefault
	default:
		return MsgStoredDefault
	}
}
