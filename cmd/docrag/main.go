// Command docrag uploads documents, indexes them in a vector store and
// answers questions about them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/docrag/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	logger.Configure(logger.Config{
		Level:  os.Getenv("DOCRAG_LOG_LEVEL"),
		Pretty: os.Getenv("DOCRAG_LOG_FORMAT") != "json",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.Execute(ctx, cli.Bootstrap{
		Settings: openSettings,
		Services: buildServices,
	}); err != nil {
		stop()
		os.Exit(1)
	}
}
