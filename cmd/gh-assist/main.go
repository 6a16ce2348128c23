package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghassist/gh-assist/internal/cmd"
	"github.com/ghassist/gh-assist/internal/observability"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2025-10-28"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)

	// Interrupts cancel in-flight requests and rate-limit waits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = observability.WithInvocation(ctx)

	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		cmd.Fail(ctx, err)
	}
}
