package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/folio/internal/common"
)

// registerRoutes sets up all dashboard routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Session
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	// Dashboard
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/dashboard/investments", s.handleAddInvestment)
	mux.HandleFunc("/dashboard/update-prices", s.handleUpdatePrices)
	mux.HandleFunc("/dashboard/charts", s.handleCharts)
	mux.HandleFunc("/dashboard/charts/distribution.png", s.handleDistributionChart)
	mux.HandleFunc("/dashboard/charts/performance.png", s.handlePerformanceChart)
	mux.HandleFunc("/dashboard/widgets", s.handleWidgets)
	mux.HandleFunc("/dashboard/widgets/", s.routeWidgets)
	mux.HandleFunc("/dashboard/assets/", s.routeAssets)

	// Landing
	mux.HandleFunc("/", s.handleLanding)
}

// routeWidgets dispatches /dashboard/widgets/{id}/toggle.
func (s *Server) routeWidgets(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/dashboard/widgets/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 2 && parts[0] != "" && parts[1] == "toggle" {
		s.handleWidgetToggle(w, r, parts[0])
		return
	}
	http.NotFound(w, r)
}

// routeAssets dispatches /dashboard/assets/{symbol} and /dashboard/assets/{symbol}/chart.png.
func (s *Server) routeAssets(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/dashboard/assets/")
	if path == "" {
		redirect(w, r, "/dashboard")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	symbol := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleAsset(w, r, symbol)
	case "chart.png":
		s.handleAssetChart(w, r, symbol)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
