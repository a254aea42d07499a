// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/arthur-debert/dotstow/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

func (r *Renderer) writer() *display.Writer {
	return display.NewWriter(r.output, display.Plain{})
}

// RenderBatch renders a stow, restow or unstow report
func (r *Renderer) RenderBatch(report *types.BatchReport) error {
	return r.writer().Batch(report)
}

// RenderStatus renders a status report
func (r *Renderer) RenderStatus(report *types.StatusReport) error {
	return r.writer().Status(report)
}

// RenderRestore renders the outcome of a restore
func (r *Renderer) RenderRestore(result *types.RestoreResult) error {
	return r.writer().Restore(result)
}

// RenderPackages renders the available packages
func (r *Renderer) RenderPackages(available, configured []string) error {
	return r.writer().Packages(available, configured)
}

// RenderConfig renders the effective configuration as TOML
func (r *Renderer) RenderConfig(cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		if _, err := fmt.Fprintf(r.output, "# loaded from %s\n", cfg.Source); err != nil {
			return err
		}
	}
	_, err = r.output.Write(data)
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	return r.writer().Error(err)
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.writer().Message(msg)
}
