package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/dotstow/internal/cli"
	"github.com/arthur-debert/dotstow/pkg/ui/styles"
)

func main() {
	// Interrupts stop the batch before the next package
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !cli.IsSilent(err) {
			fmt.Fprintln(os.Stderr, styles.GetStyle("Error").Render(fmt.Sprintf("Error: %v", err)))
		}
		stop()
		os.Exit(1)
	}
}
