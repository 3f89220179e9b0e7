package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/dashboard"
)

// page is the data behind the single page template.
type page struct {
	Title      string
	Welcome    string // empty when signed out
	Flash      string
	Body       template.HTML
	GetStarted bool

	Login     bool
	LoginName string

	Timeframes []timeframeLink
	Images     []string
	Symbols    []string
	Widgets    []dashboard.Widget

	Form       *dashboard.InvestmentForm
	FormErrors dashboard.FieldErrors
	AssetTypes []models.AssetType
}

type timeframeLink struct {
	Label    string
	URL      string
	Selected bool
}

func timeframeLinks(base string, selected models.Timeframe) []timeframeLink {
	links := make([]timeframeLink, 0, len(models.Timeframes))
	for _, tf := range models.Timeframes {
		links = append(links, timeframeLink{
			Label:    string(tf),
			URL:      base + "?timeframe=" + string(tf),
			Selected: tf == selected,
		})
	}
	return links
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | Portfolio Tracker</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f7f8fa; color: #1f2933; }
header { display: flex; justify-content: space-between; align-items: center; padding: 0.75rem 1.5rem; background: #0a192f; color: #e6f1ff; }
header a { color: #64ffda; margin-right: 1rem; text-decoration: none; }
main { max-width: 960px; margin: 1.5rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1rem; }
th, td { border-bottom: 1px solid #d9e2ec; padding: 0.4rem; text-align: left; }
.flash { background: #fff3cd; padding: 0.5rem 1rem; border-radius: 4px; }
.error { color: #c62828; font-size: 0.85rem; }
.selected { font-weight: bold; text-decoration: underline; }
form.inline { display: inline; }
img { max-width: 100%; }
</style>
</head>
<body>
<header>
  <div><strong>Portfolio Tracker</strong>
  {{if .Welcome}} <a href="/dashboard">Overview</a><a href="/dashboard/charts">Charts</a><a href="/dashboard/widgets">Widgets</a>{{end}}</div>
  {{if .Welcome}}<div>{{.Welcome}} <form class="inline" method="post" action="/logout"><button type="submit">Logout</button></form></div>{{end}}
</header>
<main>
{{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
{{if .Timeframes}}<p>{{range .Timeframes}}<a href="{{.URL}}"{{if .Selected}} class="selected"{{end}}>{{.Label}}</a> {{end}}</p>{{end}}
{{.Body}}
{{if .GetStarted}}<p><a href="/login">Get Started</a></p>{{end}}
{{range .Images}}<p><img src="{{.}}" alt="chart"></p>{{end}}
{{if .Symbols}}<p>Details: {{range .Symbols}}<a href="/dashboard/assets/{{.}}">{{.}}</a> {{end}}</p>{{end}}
{{if .Widgets}}<p>{{range .Widgets}}<form class="inline" method="post" action="/dashboard/widgets/{{.ID}}/toggle"><button type="submit">{{if .Enabled}}Hide{{else}}Show{{end}} {{.Title}}</button></form> {{end}}</p>{{end}}
{{if .Login}}
<h2>Sign in</h2>
<form method="post" action="/login">
  <p><label>Access token <input type="password" name="token" required></label></p>
  <p><label>Name <input type="text" name="name" value="{{.LoginName}}"></label></p>
  <p><label>Email <input type="email" name="email"></label></p>
  <p><button type="submit">Sign in</button></p>
</form>
{{end}}
{{with .Form}}
<form method="post" action="/dashboard/update-prices"><button type="submit">Update Prices</button></form>
<h3>Add Investment</h3>
<form method="post" action="/dashboard/investments">
  <p><label>Symbol <input type="text" name="symbol" value="{{.Symbol}}"></label> <span class="error">{{index $.FormErrors "symbol"}}</span></p>
  <p><label>Name <input type="text" name="name" value="{{.Name}}"></label> <span class="error">{{index $.FormErrors "name"}}</span></p>
  <p><label>Type <select name="type">{{$sel := .Type}}{{range $.AssetTypes}}<option value="{{.}}"{{if eq (print .) $sel}} selected{{end}}>{{.}}</option>{{end}}</select></label> <span class="error">{{index $.FormErrors "type"}}</span></p>
  <p><label>Quantity <input type="text" name="quantity" value="{{.Quantity}}"></label> <span class="error">{{index $.FormErrors "quantity"}}</span></p>
  <p><label>Purchase price <input type="text" name="purchasePrice" value="{{.PurchasePrice}}"></label> <span class="error">{{index $.FormErrors "purchasePrice"}}</span></p>
  <p><label>Current price <input type="text" name="currentPrice" value="{{.CurrentPrice}}"></label> <span class="error">{{index $.FormErrors "currentPrice"}}</span></p>
  <p><label>Purchase date <input type="date" name="purchaseDate" value="{{.PurchaseDate}}"></label> <span class="error">{{index $.FormErrors "purchaseDate"}}</span></p>
  <p><button type="submit">Add Investment</button></p>
</form>
{{end}}
</main>
</body>
</html>
`))

// renderPage converts md to HTML and writes the page with status.
func (s *Server) renderPage(w http.ResponseWriter, status int, p page, md string) {
	body, err := render.HTML(md)
	if err != nil {
		s.logger.Error().Err(err).Str("title", p.Title).Msg("Failed to render markdown")
		WriteError(w, http.StatusInternalServerError, "Failed to render page")
		return
	}
	p.Body = body

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		s.logger.Error().Err(err).Str("title", p.Title).Msg("Failed to render page")
		WriteError(w, http.StatusInternalServerError, "Failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
