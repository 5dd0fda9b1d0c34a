package main

import (
	"log/slog"
	"os"

	"github.com/hitoshi/morningpost/internal/app"
)

func main() {
	if err := app.Run(os.Stderr, os.Args[1:]); err != nil {
		slog.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
