package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/repo-preflight/internal/cmd"
	"github.com/felixgeelhaar/repo-preflight/internal/exitcode"
)

func main() {
	// Create a context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
			stop()
			exitcode.Exit(exitcode.Interrupted)
		}

		code := cmd.HandleError(os.Stderr, err)
		stop()
		exitcode.Exit(code)
	}
}
