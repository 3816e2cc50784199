package main

import (
	"context"

	"activityhub-backend/cmd/activityhub-cli/commands"
	"activityhub-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
