package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

// QuantityPlaces is the precision accepted for quantities and prices.
const QuantityPlaces = 6

// InvestmentForm is the add-investment form as typed by the user.
type InvestmentForm struct {
	Symbol        string
	Name          string
	Type          string
	Quantity      string
	PurchasePrice string
	PurchaseDate  string
	CurrentPrice  string
}

// NewInvestmentForm returns an empty form with the default type.
func NewInvestmentForm() InvestmentForm {
	return InvestmentForm{Type: string(models.AssetStock)}
}

// Reset restores the defaults after a successful submit.
func (f *InvestmentForm) Reset() {
	*f = NewInvestmentForm()
}

// FieldErrors maps a form field name to its problem.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range formFields {
		if msg, ok := e[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return "invalid investment: " + strings.Join(parts, "; ")
}

// formFields is the display order, matching the JSON names.
var formFields = []string{"symbol", "name", "type", "quantity", "purchasePrice", "purchaseDate", "currentPrice"}

// Validate checks every field. It returns nil when the form can be submitted.
func (f InvestmentForm) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.Symbol) == "" {
		errs["symbol"] = "required"
	}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "required"
	}
	if _, ok := models.ParseAssetType(f.Type); !ok {
		errs["type"] = "must be one of Stock, Crypto, ETF, Mutual Fund, Bond, Other"
	}
	if _, err := parseAmount(f.Quantity); err != nil {
		errs["quantity"] = err.Error()
	}
	if _, err := parseAmount(f.PurchasePrice); err != nil {
		errs["purchasePrice"] = err.Error()
	}
	if _, err := parseAmount(f.CurrentPrice); err != nil {
		errs["currentPrice"] = err.Error()
	}
	if s := strings.TrimSpace(f.PurchaseDate); s == "" {
		errs["purchaseDate"] = "required"
	} else if _, err := time.Parse("2006-01-02", s); err != nil {
		errs["purchaseDate"] = "must be a date (YYYY-MM-DD)"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Parse validates the form and converts it to a request body.
func (f InvestmentForm) Parse() (models.NewInvestment, error) {
	if errs := f.Validate(); errs != nil {
		return models.NewInvestment{}, errs
	}

	assetType, _ := models.ParseAssetType(f.Type)
	qty, _ := parseAmount(f.Quantity)
	purchase, _ := parseAmount(f.PurchasePrice)
	current, _ := parseAmount(f.CurrentPrice)

	return models.NewInvestment{
		Symbol:        strings.ToUpper(strings.TrimSpace(f.Symbol)),
		Name:          strings.TrimSpace(f.Name),
		Type:          assetType,
		Quantity:      qty,
		PurchasePrice: purchase,
		PurchaseDate:  strings.TrimSpace(f.PurchaseDate),
		CurrentPrice:  current,
	}, nil
}

// parseAmount reads a non-negative decimal rounded to QuantityPlaces.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("must be zero or more")
	}
	return d.Round(QuantityPlaces).InexactFloat64(), nil
}
