// Command patterndb builds, checks and compresses 24-puzzle pattern
// databases, and enumerates the puzzle's configuration space by depth.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "patterndb:", err)
		os.Exit(1)
	}
}
