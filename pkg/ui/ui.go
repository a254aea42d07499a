// Package ui provides a unified interface for rendering output in different formats.
// It supports terminal (rich), text (plain), and JSON output formats.
package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/arthur-debert/dotstow/pkg/ui/json"
	"github.com/arthur-debert/dotstow/pkg/ui/terminal"
	"github.com/arthur-debert/dotstow/pkg/ui/text"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	RenderBatch(report *types.BatchReport) error
	RenderStatus(report *types.StatusReport) error
	RenderRestore(result *types.RestoreResult) error
	RenderPackages(available, configured []string) error
	RenderConfig(cfg *config.Config) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// It automatically detects terminal capabilities when format is Auto.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(output), output)
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
