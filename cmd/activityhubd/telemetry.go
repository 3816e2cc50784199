package main

import (
	"context"
	"log/slog"
	"os"

	"activityhub-backend/lib/serviceutil"
	"activityhub-backend/lib/telemetry"
)

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "activityhubd")
	if os.IsNotExist(err) {
		slog.WarnContext(ctx, "no telemetry.json5 found, running with noop providers")
		return
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Error("shutdown telemetry", "err", err)
		}
	}()
}
