// Package render formats the current view state for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/careerflow/careerflow-cli/internal/app"
)

// Renderer writes a view state in a specific format.
type Renderer interface {
	// Format returns the format name (e.g., "text", "json").
	Format() string

	// Render writes the formatted view to w.
	Render(state app.State, w io.Writer) error
}

// New creates a renderer by format name ("text" or "json").
// The format name is case-insensitive.
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "text":
		return &TextRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}
