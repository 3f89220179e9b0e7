package dashboard

import (
	"github.com/bobmcallan/folio/internal/models"
)

// AppName is the product name shown in the shell and landing page.
const AppName = "Portfolio Tracker"

// Welcome is the greeting in the dashboard header.
func Welcome(sess *models.Session) string {
	if sess == nil {
		return "Welcome"
	}
	return "Welcome, " + sess.User.Name
}

// Feature is a landing page feature card.
type Feature struct {
	Title       string
	Description string
}

// Landing is the static marketing page content.
type Landing struct {
	Brand    string
	Headline string
	Tagline  string
	Features []Feature
	Footer   string
}

// LandingPage returns the landing content.
func LandingPage() Landing {
	return Landing{
		Brand:    "PortfolioTrack",
		Headline: "Track Your Investments with Confidence",
		Tagline:  "A modern, intuitive platform for managing your investment portfolio",
		Features: []Feature{
			{Title: "Portfolio Overview", Description: "Get a real-time snapshot of your portfolio's performance with interactive charts"},
			{Title: "Asset Management", Description: "Easily add, track, and manage all your investments in one place"},
			{Title: "Smart Analytics", Description: "Make informed decisions with detailed performance analytics"},
		},
		Footer: "Your trusted investment companion",
	}
}
