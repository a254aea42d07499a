// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/types"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	output  io.Writer
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{
		output:  output,
		encoder: encoder,
	}, nil
}

// RenderBatch renders a batch report with its overall outcome
func (r *Renderer) RenderBatch(report *types.BatchReport) error {
	return r.encoder.Encode(struct {
		*types.BatchReport
		Succeeded bool `json:"succeeded"`
	}{report, report.Succeeded()})
}

// RenderStatus renders a status report
func (r *Renderer) RenderStatus(report *types.StatusReport) error {
	return r.encoder.Encode(report)
}

// RenderRestore renders the outcome of a restore
func (r *Renderer) RenderRestore(result *types.RestoreResult) error {
	return r.encoder.Encode(struct {
		*types.RestoreResult
		Succeeded bool `json:"succeeded"`
	}{result, result.Succeeded()})
}

type packageEntry struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// RenderPackages renders the available packages
func (r *Renderer) RenderPackages(available, configured []string) error {
	marked := make(map[string]bool, len(configured))
	for _, name := range configured {
		marked[name] = true
	}
	entries := make([]packageEntry, 0, len(available))
	for _, name := range available {
		entries = append(entries, packageEntry{Name: name, Configured: marked[name]})
	}
	return r.encoder.Encode(map[string]interface{}{"packages": entries})
}

// RenderConfig renders the effective configuration
func (r *Renderer) RenderConfig(cfg *config.Config) error {
	return r.encoder.Encode(struct {
		*config.Config
		Source string `json:"source,omitempty"`
	}{cfg, cfg.Source})
}

// RenderError renders an error as JSON
func (r *Renderer) RenderError(err error) error {
	errorObj := map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetErrorCode(err),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		errorObj["details"] = details
	}
	return r.encoder.Encode(errorObj)
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	messageObj := map[string]string{
		"message": msg,
	}
	return r.encoder.Encode(messageObj)
}
