// Command sercha-rag retrieves the parts of a document or website most
// relevant to a question.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/app"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file is optional; it supplies OPENAI_API_KEY and OLLAMA_HOST.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetServiceFactory(app.NewFactory())

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
