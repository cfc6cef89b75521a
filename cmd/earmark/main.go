package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"earmark/internal/services"
)

// Exit codes: 1 for expected conditions (nothing indexed yet), 2 for
// system failures that must never be read as a negative verdict.
func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if services.IsSystemFailure(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
