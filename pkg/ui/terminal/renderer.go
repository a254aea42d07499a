// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/paths"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/arthur-debert/dotstow/pkg/ui/display"
	"github.com/arthur-debert/dotstow/pkg/ui/styles"
	"github.com/pterm/pterm"
)

// Renderer writes results through the lipgloss style registry
type Renderer struct {
	output io.Writer
}

// painter maps semantic names onto the style registry
type painter struct{}

func (painter) Paint(style, text string) string {
	return styles.GetStyle(style).Render(text)
}

var loadUserStyles sync.Once

// New creates a new terminal renderer. A styles.yaml next to the user
// config file replaces the built-in styles.
func New(w io.Writer) (*Renderer, error) {
	loadUserStyles.Do(func() {
		path := paths.StylesFilePath()
		if _, err := os.Stat(path); err != nil {
			return
		}
		if err := styles.LoadStyles(path); err != nil {
			logger := logging.GetLogger("ui")
			logger.Warn().Err(err).Str("path", path).Msg("Ignoring styles file")
		}
	})
	return &Renderer{output: w}, nil
}

func (r *Renderer) writer() *display.Writer {
	return display.NewWriter(r.output, painter{})
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
		if _, err := fmt.Fprintln(r.output, styles.GetStyle("Muted").Render("# loaded from "+cfg.Source)); err != nil {
			return err
		}
	}
	_, err = r.output.Write(data)
	return err
}

// RenderError renders an error with pterm's error prefix
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "%s %s\n",
		pterm.Error.Prefix.Style.Sprint(" "+pterm.Error.Prefix.Text+" "),
		pterm.Error.MessageStyle.Sprint(display.Message(err)))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, pterm.Info.MessageStyle.Sprint(msg))
	return err
}
