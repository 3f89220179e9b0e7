// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/dashboard"
	"github.com/bobmcallan/folio/internal/services/session"
)

// Screens
const (
	ScreenOverview = iota
	ScreenCharts
	ScreenWidgets
	ScreenAsset
)

var screenNames = []string{"Overview", "Charts", "Widgets", "Asset"}

// Markdown renders markdown for the terminal.
type Markdown interface {
	Render(md string) (string, error)
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx      context.Context
	ctrl     *dashboard.Controller
	sess     *models.Session
	markdown Markdown
	logger   *common.Logger

	Screen int
	Cursor int // selected overview row or widget
	Width  int
	Height int

	Loading   bool
	SignedOut bool
	Polling   bool
	Status    string
	Error     string

	charts dashboard.ChartsState
	asset  *dashboard.AssetView
	assetS dashboard.AssetState
}

// Messages
type portfolioMsg struct {
	err error
}

type chartsMsg struct {
	state dashboard.ChartsState
	err   error
}

type assetMsg struct {
	view  *dashboard.AssetView
	state dashboard.AssetState
}

type quotesMsg struct{}

type actionMsg struct {
	status string
	err    error
}

// NewModel creates the dashboard model. ctx bounds every request the
// model starts.
func NewModel(ctx context.Context, ctrl *dashboard.Controller, md Markdown, logger *common.Logger) *Model {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		sess:     ctrl.Session(),
		markdown: md,
		logger:   logger,
		Loading:  true,
		charts:   ctrl.Charts.State(),
	}
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, ctrl *dashboard.Controller, md Markdown, logger *common.Logger) error {
	m := NewModel(ctx, ctrl, md, logger)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard exited: %w", err)
	}
	if m.SignedOut {
		return session.ErrNoSession
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// waitForQuotes blocks until the controller's poller applies an update.
func (m *Model) waitForQuotes() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctrl.QuoteUpdates():
			return quotesMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Refresh(m.ctx)
		return portfolioMsg{err: err}
	}
}

// quotesCmd polls once outside the schedule. The result reaches the view
// through waitForQuotes.
func (m *Model) quotesCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.RefreshQuotes(m.ctx)
		return nil
	}
}

func (m *Model) chartsCmd(tf models.Timeframe) tea.Cmd {
	return func() tea.Msg {
		var (
			state dashboard.ChartsState
			err   error
		)
		if tf == "" {
			state, err = m.ctrl.Charts.Load(m.ctx)
		} else {
			state, err = m.ctrl.Charts.Select(m.ctx, tf)
		}
		return chartsMsg{state: state, err: err}
	}
}

func (m *Model) assetCmd(view *dashboard.AssetView, tf models.Timeframe) tea.Cmd {
	return func() tea.Msg {
		if tf == "" {
			return assetMsg{view: view, state: view.Load(m.ctx)}
		}
		return assetMsg{view: view, state: view.Select(m.ctx, tf)}
	}
}

func (m *Model) updatePricesCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.ctrl.UpdatePrices(m.ctx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "Prices updated"}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case portfolioMsg:
		m.Loading = false
		if msg.err != nil {
			if session.IsSignedOut(msg.err) {
				m.SignedOut = true
				return m, tea.Quit
			}
			m.Error = m.ctrl.Error()
			return m, nil
		}
		m.Error = ""
		m.Status = "Portfolio loaded " + time.Now().Format("15:04:05")
		if !m.Polling {
			m.Polling = true
			m.ctrl.StartPolling(m.ctx)
			return m, tea.Batch(m.chartsCmd(""), m.waitForQuotes())
		}
		return m, tea.Batch(m.quotesCmd(), m.chartsCmd(""))

	case quotesMsg:
		return m, m.waitForQuotes()

	case chartsMsg:
		m.charts = msg.state
		if msg.err != nil && session.IsSignedOut(msg.err) {
			m.SignedOut = true
			return m, tea.Quit
		}
		return m, nil

	case assetMsg:
		if msg.view == m.asset {
			m.assetS = msg.state
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			if session.IsSignedOut(msg.err) {
				m.SignedOut = true
				return m, tea.Quit
			}
			m.Error = m.ctrl.Error()
			return m, nil
		}
		m.Error = ""
		m.Status = msg.status
		return m, m.chartsCmd("")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.ctrl.Close()
		if m.asset != nil {
			m.asset.Close()
		}
		return m, tea.Quit

	case "tab", "right":
		m.switchScreen((m.Screen + 1) % len(screenNames))
		return m, nil

	case "shift+tab", "left":
		m.switchScreen((m.Screen + len(screenNames) - 1) % len(screenNames))
		return m, nil

	case "esc":
		m.switchScreen(ScreenOverview)
		return m, nil

	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case "down", "j":
		if m.Cursor < m.cursorLimit()-1 {
			m.Cursor++
		}
		return m, nil

	case "1", "2", "3":
		tf := models.Timeframes[int(msg.String()[0]-'1')]
		switch m.Screen {
		case ScreenCharts, ScreenWidgets:
			m.charts.Loading = true
			m.charts.Timeframe = tf
			return m, m.chartsCmd(tf)
		case ScreenAsset:
			if m.asset != nil {
				m.assetS.Loading = true
				m.assetS.Timeframe = tf
				return m, m.assetCmd(m.asset, tf)
			}
		}
		return m, nil

	case "enter":
		switch m.Screen {
		case ScreenOverview:
			return m, m.openAsset()
		case ScreenWidgets:
			widgets := m.ctrl.Widgets.Widgets()
			if m.Cursor < len(widgets) {
				m.ctrl.Widgets.Toggle(widgets[m.Cursor].ID)
			}
		}
		return m, nil

	case "r":
		m.Loading = true
		return m, m.refreshCmd()

	case "u":
		m.Status = "Updating prices..."
		return m, m.updatePricesCmd()
	}

	return m, nil
}

func (m *Model) switchScreen(screen int) {
	m.Screen = screen
	m.Cursor = 0
}

func (m *Model) cursorLimit() int {
	switch m.Screen {
	case ScreenOverview:
		return len(m.ctrl.Overview().Rows)
	case ScreenWidgets:
		return len(m.ctrl.Widgets.Widgets())
	}
	return 0
}

// openAsset opens the detail view for the selected overview row.
func (m *Model) openAsset() tea.Cmd {
	rows := m.ctrl.Overview().Rows
	if m.Cursor >= len(rows) {
		return nil
	}
	if m.asset != nil {
		m.asset.Close()
	}
	m.asset = m.ctrl.Asset(rows[m.Cursor].Investment.Symbol)
	m.assetS = m.asset.State()
	m.assetS.Loading = true
	m.Screen = ScreenAsset
	return m.assetCmd(m.asset, "")
}

func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(dashboard.AppName))
	sb.WriteString("  ")
	sb.WriteString(welcomeStyle.Render(dashboard.Welcome(m.sess)))
	sb.WriteString("\n\n")

	tabs := make([]string, len(screenNames))
	for i, name := range screenNames {
		if i == m.Screen {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	sb.WriteString(strings.Join(tabs, " "))
	sb.WriteString("\n\n")

	if m.Error != "" {
		sb.WriteString(errorStyle.Render(m.Error) + "\n\n")
	}

	switch m.Screen {
	case ScreenOverview:
		sb.WriteString(m.overviewView())
	case ScreenCharts:
		sb.WriteString(m.markdownView(render.Charts(m.charts)))
	case ScreenWidgets:
		sb.WriteString(m.widgetsView())
	case ScreenAsset:
		sb.WriteString(m.assetView())
	}

	sb.WriteString("\n")
	if m.Status != "" {
		sb.WriteString(dimStyle.Render(m.Status) + "\n")
	}
	sb.WriteString(dimStyle.Render(helpLine(m.Screen)))
	return sb.String()
}

func helpLine(screen int) string {
	switch screen {
	case ScreenOverview:
		return "↑/↓ select • enter details • r refresh • u update prices • tab next • q quit"
	case ScreenCharts:
		return "1 1W • 2 1M • 3 1Y • tab next • q quit"
	case ScreenWidgets:
		return "↑/↓ select • enter show/hide • 1/2/3 timeframe • tab next • q quit"
	default:
		return "1 1W • 2 1M • 3 1Y • esc back • q quit"
	}
}

func (m *Model) markdownView(md string) string {
	out, err := m.markdown.Render(md)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Markdown render failed")
	}
	return out
}

// overviewView lists the investments with a cursor, then the summary.
func (m *Model) overviewView() string {
	if m.Loading && !m.ctrl.Loaded() {
		return "Loading portfolio...\n"
	}

	overview := m.ctrl.Overview()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total Value %s   Invested %s   Gain/Loss %s\n\n",
		common.FormatMoney(overview.Summary.TotalValue),
		common.FormatMoney(overview.Summary.TotalInvestment),
		signedStyle(overview.Summary.TotalGainLoss).Render(
			common.FormatSignedMoney(overview.Summary.TotalGainLoss)+" ("+common.FormatSignedPct(overview.Summary.GainLossPercentage)+")"),
	))

	if overview.Empty() {
		sb.WriteString(render.NoInvestmentData + "\n")
		return sb.String()
	}

	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %-8s %-20s %-12s %14s %12s %14s %14s %9s", "Symbol", "Name", "Type", "Quantity", "Price", "Value", "Gain/Loss", "Change")))
	sb.WriteString("\n")
	for i, row := range overview.Rows {
		prefix := "  "
		if i == m.Cursor {
			prefix = cursorStyle.Render("> ")
		}
		price := common.FormatMoney(row.CurrentPrice)
		if row.Live {
			price += "*"
		}
		line := fmt.Sprintf("%-8s %-20s %-12s %14s %12s %14s ",
			row.Investment.Symbol, truncate(row.Investment.Name, 20), row.Investment.Type,
			common.FormatQuantity(row.Investment.Quantity), price, common.FormatMoney(row.Value))
		change := signedStyle(row.GainLoss).Render(fmt.Sprintf("%14s %9s",
			common.FormatSignedMoney(row.GainLoss), common.FormatSignedPct(row.PctChange)))
		sb.WriteString(prefix + line + change + "\n")
	}
	sb.WriteString(dimStyle.Render("\n* live quote") + "\n")
	return sb.String()
}

// widgetsView lists the widget toggles above the enabled widgets.
func (m *Model) widgetsView() string {
	var sb strings.Builder
	for i, w := range m.ctrl.Widgets.Widgets() {
		prefix := "  "
		if i == m.Cursor {
			prefix = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		if w.Enabled {
			mark = "[x]"
		}
		sb.WriteString(fmt.Sprintf("%s%s %s %s\n", prefix, mark, w.Title, dimStyle.Render("("+w.Size+")")))
	}
	sb.WriteString("\n")
	if m.charts.UsingStored() {
		sb.WriteString(badgeStyle.Render(" "+render.StoredDataBadge+" ") + "\n")
	}
	charts := m.charts
	sb.WriteString(m.markdownView(render.Widgets(m.ctrl.Widgets, &charts)))
	return sb.String()
}

func (m *Model) assetView() string {
	if m.asset == nil {
		return "Select an investment on the Overview screen and press enter.\n"
	}
	return m.markdownView(render.Asset(m.assetS))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
