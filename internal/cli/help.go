package cli

import (
	"embed"
	"io/fs"

	"github.com/arthur-debert/dotstow/pkg/cobrax/topics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// initTopics replaces the help command with one that also serves the
// embedded topics. Markdown is rendered with glamour on a terminal.
func initTopics(rootCmd *cobra.Command) {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}

	var renderer topics.Renderer = &topics.PlainRenderer{}
	if stdoutIsTerminal() {
		renderer = topics.NewGlamourRenderer()
	}
	if _, err := topics.Initialize(rootCmd, sub, topics.Options{Renderer: renderer, GroupID: "misc"}); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}
}
