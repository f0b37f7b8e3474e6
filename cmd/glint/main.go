package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/telemetry"
	"github.com/tobyfield/glint/internal/ui"
)

// version is overridden at build time via -ldflags.
var version = "0.3.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ui.Init()
	if err := telemetry.Init(ctx, "glint", version); err != nil {
		debug.Logf("telemetry init failed: %v\n", err)
	}

	code := Execute(ctx)
	telemetry.Shutdown(context.Background())
	os.Exit(code)
}
