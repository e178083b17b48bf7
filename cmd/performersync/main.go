package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"performersync/internal/runlock"
	"performersync/internal/services"
)

// Exit codes: 1 for a failed run, 2 for configuration problems, 3 when
// another run holds the lock.
func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return 2
	case errors.Is(err, runlock.ErrHeld):
		return 3
	default:
		return 1
	}
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "performersync: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}
