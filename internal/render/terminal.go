package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Terminal styles accepted by TerminalRenderer.
const (
	StyleAuto  = "auto"
	StyleNoTTY = "notty"
	StyleDark  = "dark"
	StyleLight = "light"
)

// TerminalRenderer renders markdown for a terminal.
type TerminalRenderer struct {
	r *glamour.TermRenderer
}

// NewTerminalRenderer creates a renderer with the given glamour style and
// word wrap width (0 uses 100).
func NewTerminalRenderer(style string, width int) (*TerminalRenderer, error) {
	if width <= 0 {
		width = 100
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	return &TerminalRenderer{r: r}, nil
}

// Render formats markdown. On failure the raw markdown is returned with the error.
func (t *TerminalRenderer) Render(md string) (string, error) {
	out, err := t.r.Render(md)
	if err != nil {
		return md, fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
