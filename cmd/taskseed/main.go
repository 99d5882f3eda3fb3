// Package main is the entry point for the taskseed CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taskseed/internal/backend/asana"
	"taskseed/internal/cli"
	"taskseed/internal/commands"
	"taskseed/internal/config"
	"taskseed/internal/service"
)

func main() {
	// Cancel on interrupt so in-flight pauses and requests stop promptly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Service, error) {
		return asana.New(ctx, cfg, log)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
