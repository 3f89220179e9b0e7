package render

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/folio/internal/models"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// ChartSize is the PNG size in pixels.
type ChartSize struct {
	Width  int
	Height int
}

// DefaultChartSize matches the config defaults.
var DefaultChartSize = ChartSize{Width: 900, Height: 400}

func (s ChartSize) orDefault() ChartSize {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultChartSize
	}
	return s
}

// sliceColors cycles over the distribution slices.
var sliceColors = []string{"64ffda", "4caf50", "2196f3", "ff9800", "e91e63", "9c27b0"}

const lineColor = "0f9d8a"

// DistributionPNG renders the asset distribution as a pie chart.
func DistributionPNG(dist models.Distribution, size ChartSize) ([]byte, error) {
	if len(dist) == 0 || dist.Total() <= 0 {
		return nil, ErrNoData
	}
	size = size.orDefault()

	values := make([]chart.Value, 0, len(dist))
	for i, slice := range dist {
		if slice.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", slice.Type, dist.Share(i)),
			Value: slice.Value,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(sliceColors[i%len(sliceColors)]),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Asset Distribution",
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// PerformancePNG renders the performance series. Estimated series are dashed.
func PerformancePNG(series models.PerformanceSeries, size ChartSize) ([]byte, error) {
	if len(series.Points) < 2 {
		return nil, ErrNoData
	}

	xValues := make([]time.Time, len(series.Points))
	yValues := make([]float64, len(series.Points))
	for i, p := range series.Points {
		xValues[i] = p.Date
		yValues[i] = p.Value
	}

	style := chart.Style{
		StrokeColor: drawing.ColorFromHex(lineColor),
		StrokeWidth: 2.5,
	}
	if series.Estimated {
		style.StrokeDashArray = []float64{5.0, 5.0}
	}

	label := series.Label
	if label == "" {
		label = models.SeriesLabelLive
	}

	return renderTimeSeries("Portfolio Performance", chart.TimeSeries{
		Name:    label,
		Style:   style,
		XValues: xValues,
		YValues: yValues,
	}, size)
}

// AssetPNG renders one symbol's close history.
func AssetPNG(symbol string, history []models.HistoricalPoint, size ChartSize) ([]byte, error) {
	var xValues []time.Time
	var yValues []float64
	for _, p := range history {
		if p.Date.IsZero() || p.Close <= 0 {
			continue
		}
		xValues = append(xValues, p.Date.Time)
		yValues = append(yValues, p.Close)
	}
	if len(xValues) < 2 {
		return nil, ErrNoData
	}

	return renderTimeSeries(symbol, chart.TimeSeries{
		Name: "Price",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex(lineColor),
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: yValues,
	}, size)
}

func renderTimeSeries(title string, series chart.TimeSeries, size ChartSize) ([]byte, error) {
	size = size.orDefault()

	yAxis := chart.YAxis{
		ValueFormatter: func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("$%.2f", f)
			}
			return ""
		},
	}
	if lo, hi := minMax(series.YValues); lo == hi {
		// go-chart rejects a zero-height range
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis:  yAxis,
		Series: []chart.Series{series},
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
