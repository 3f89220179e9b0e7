package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/dashboard"
)

// chartSize returns the configured PNG size.
func (s *Server) chartSize() render.ChartSize {
	width, height := s.app.ChartSize()
	return render.ChartSize{Width: width, Height: height}
}

// dashboardPage renders the overview with the add-investment form.
func (s *Server) dashboardPage(w http.ResponseWriter, status int, sess *models.Session, st *sessionState, form *dashboard.InvestmentForm, errs dashboard.FieldErrors) {
	overview := st.ctrl.Overview()

	md := render.Overview(overview)
	if !st.ctrl.Loaded() {
		md = "Loading portfolio...\n\n" + md
	}
	if len(errs) > 0 {
		md += "\n" + render.FormErrors(errs)
	}

	symbols := make([]string, 0, len(overview.Rows))
	seen := make(map[string]bool)
	for _, row := range overview.Rows {
		sym := strings.ToUpper(row.Investment.Symbol)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}

	s.renderPage(w, status, page{
		Title:      "Dashboard",
		Welcome:    dashboard.Welcome(sess),
		Flash:      st.ctrl.Error(),
		Symbols:    symbols,
		Form:       form,
		FormErrors: errs,
		AssetTypes: models.AssetTypes,
	}, md)
}

// handleDashboard fetches the portfolio on every visit and renders the overview.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)

	if _, err := st.ctrl.Refresh(r.Context()); err != nil {
		if s.signOutIfUnauthorized(w, r, err) {
			return
		}
	} else {
		st.pollOnce.Do(func() { st.ctrl.StartPolling(s.baseCtx) })
	}

	form := dashboard.NewInvestmentForm()
	s.dashboardPage(w, http.StatusOK, sess, st, &form, nil)
}

// handleAddInvestment validates and submits the add-investment form.
func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)

	if err := r.ParseForm(); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid form submission")
		return
	}
	form := dashboard.InvestmentForm{
		Symbol:        r.PostForm.Get("symbol"),
		Name:          r.PostForm.Get("name"),
		Type:          r.PostForm.Get("type"),
		Quantity:      r.PostForm.Get("quantity"),
		PurchasePrice: r.PostForm.Get("purchasePrice"),
		PurchaseDate:  r.PostForm.Get("purchaseDate"),
		CurrentPrice:  r.PostForm.Get("currentPrice"),
	}

	_, err := st.ctrl.AddInvestment(r.Context(), &form)
	if err == nil {
		redirect(w, r, "/dashboard")
		return
	}

	var fieldErrs dashboard.FieldErrors
	if errors.As(err, &fieldErrs) {
		s.dashboardPage(w, http.StatusUnprocessableEntity, sess, st, &form, fieldErrs)
		return
	}
	if s.signOutIfUnauthorized(w, r, err) {
		return
	}
	s.dashboardPage(w, http.StatusBadGateway, sess, st, &form, nil)
}

// handleUpdatePrices asks the backend to refresh stored prices.
func (s *Server) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)

	if _, err := st.ctrl.UpdatePrices(r.Context()); err != nil {
		if s.signOutIfUnauthorized(w, r, err) {
			return
		}
		form := dashboard.NewInvestmentForm()
		s.dashboardPage(w, http.StatusBadGateway, sess, st, &form, nil)
		return
	}
	redirect(w, r, "/dashboard")
}

// loadCharts returns the charts state, reloading when a timeframe is given
// or nothing has landed yet.
func (s *Server) loadCharts(r *http.Request, st *sessionState) (dashboard.ChartsState, error) {
	if tf := r.URL.Query().Get("timeframe"); tf != "" {
		return st.ctrl.Charts.Select(r.Context(), models.Timeframe(tf))
	}
	if state := st.ctrl.Charts.State(); state.Analytics != nil {
		return state, nil
	}
	return st.ctrl.Charts.Load(r.Context())
}

// handleCharts renders the distribution and performance charts.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)

	if err := s.ensurePortfolio(r.Context(), st); err != nil && s.signOutIfUnauthorized(w, r, err) {
		return
	}

	state, err := s.loadCharts(r, st)
	if err != nil && s.signOutIfUnauthorized(w, r, err) {
		return
	}

	p := page{
		Title:      "Charts",
		Welcome:    dashboard.Welcome(sess),
		Flash:      st.ctrl.Error(),
		Timeframes: timeframeLinks("/dashboard/charts", state.Timeframe),
	}
	if state.Analytics != nil {
		p.Images = []string{
			"/dashboard/charts/distribution.png",
			"/dashboard/charts/performance.png?timeframe=" + string(state.Analytics.Timeframe),
		}
	}
	s.renderPage(w, http.StatusOK, p, render.Charts(state))
}

// chartsForImage returns analytics for a chart image, reusing the landed
// result when it matches the requested timeframe.
func (s *Server) chartsForImage(w http.ResponseWriter, r *http.Request) *models.Analytics {
	sess := s.requireSession(w, r)
	if sess == nil {
		return nil
	}
	st := s.state(sess)

	if err := s.ensurePortfolio(r.Context(), st); err != nil {
		if !s.signOutIfUnauthorized(w, r, err) {
			http.Error(w, dashboard.MsgFetchPortfolio, http.StatusBadGateway)
		}
		return nil
	}

	state := st.ctrl.Charts.State()
	want := r.URL.Query().Get("timeframe")
	switch {
	case want != "" && (state.Analytics == nil || string(state.Analytics.Timeframe) != want):
		state, _ = st.ctrl.Charts.Select(r.Context(), models.Timeframe(want))
	case state.Analytics == nil:
		state, _ = st.ctrl.Charts.Load(r.Context())
	}
	if state.Analytics == nil {
		http.Error(w, render.NoInvestmentData, http.StatusNotFound)
		return nil
	}
	return state.Analytics
}

func (s *Server) handleDistributionChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	analytics := s.chartsForImage(w, r)
	if analytics == nil {
		return
	}
	s.writeChart(w, func() ([]byte, error) {
		return render.DistributionPNG(analytics.Distribution, s.chartSize())
	}, render.NoAssetData)
}

func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	analytics := s.chartsForImage(w, r)
	if analytics == nil {
		return
	}
	s.writeChart(w, func() ([]byte, error) {
		return render.PerformancePNG(analytics.Performance, s.chartSize())
	}, render.NoPerformanceData)
}

// writeChart renders a PNG, answering 404 with the empty-state text when
// there is nothing to plot.
func (s *Server) writeChart(w http.ResponseWriter, draw func() ([]byte, error), empty string) {
	data, err := draw()
	if errors.Is(err, render.ErrNoData) {
		http.Error(w, empty, http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render chart")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	WritePNG(w, data)
}

// handleWidgets renders the enabled widgets with their toggles.
func (s *Server) handleWidgets(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)

	if err := s.ensurePortfolio(r.Context(), st); err != nil && s.signOutIfUnauthorized(w, r, err) {
		return
	}
	if st.ctrl.Widgets.Loading() {
		st.ctrl.RefreshQuotes(r.Context())
	}

	var charts *dashboard.ChartsState
	needCharts := st.ctrl.Widgets.Enabled(dashboard.WidgetAssetDistribution) || st.ctrl.Widgets.Enabled(dashboard.WidgetPortfolioPerformance)
	if needCharts {
		state := st.ctrl.Charts.State()
		if state.Analytics == nil {
			state, _ = st.ctrl.Charts.Load(r.Context())
		}
		charts = &state
	}

	p := page{
		Title:   "Widgets",
		Welcome: dashboard.Welcome(sess),
		Flash:   st.ctrl.Error(),
		Widgets: st.ctrl.Widgets.Widgets(),
	}
	if charts != nil && charts.Analytics != nil {
		if st.ctrl.Widgets.Enabled(dashboard.WidgetAssetDistribution) {
			p.Images = append(p.Images, "/dashboard/charts/distribution.png")
		}
		if st.ctrl.Widgets.Enabled(dashboard.WidgetPortfolioPerformance) {
			p.Images = append(p.Images, "/dashboard/charts/performance.png?timeframe="+string(charts.Analytics.Timeframe))
		}
	}
	s.renderPage(w, http.StatusOK, p, render.Widgets(st.ctrl.Widgets, charts))
}

// handleWidgetToggle flips one widget's visibility.
func (s *Server) handleWidgetToggle(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)

	if !st.ctrl.Widgets.Toggle(id) {
		http.NotFound(w, r)
		return
	}
	redirect(w, r, "/dashboard/widgets")
}

// handleAsset renders the detail view for one symbol.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)

	if err := s.ensurePortfolio(r.Context(), st); err != nil && s.signOutIfUnauthorized(w, r, err) {
		return
	}

	view := st.asset(symbol)
	var state dashboard.AssetState
	if tf := r.URL.Query().Get("timeframe"); tf != "" {
		state = view.Select(r.Context(), models.Timeframe(tf))
	} else {
		state = view.Load(r.Context())
	}

	p := page{
		Title:      state.Symbol,
		Welcome:    dashboard.Welcome(sess),
		Timeframes: timeframeLinks("/dashboard/assets/"+state.Symbol, state.Timeframe),
	}
	if len(state.History) > 0 {
		p.Images = []string{"/dashboard/assets/" + state.Symbol + "/chart.png"}
	}
	s.renderPage(w, http.StatusOK, p, render.Asset(state))
}

// handleAssetChart renders the asset price history as a PNG.
func (s *Server) handleAssetChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	st := s.state(sess)
	if err := s.ensurePortfolio(r.Context(), st); err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Asset chart without portfolio")
	}

	view := st.asset(symbol)
	state := view.State()
	if len(state.History) == 0 && state.Error == "" {
		state = view.Load(r.Context())
	}
	s.writeChart(w, func() ([]byte, error) {
		return render.AssetPNG(state.Symbol, state.History, s.chartSize())
	}, render.NoAssetData)
}
