package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/mcp/service"
)

// main starts the portfolio MCP server on stdio or HTTP.
func main() {
	transport := flag.String("transport", envOr("MCP_TRANSPORT", service.TransportStdio), "transport: stdio or http")
	httpAddr := flag.String("http-addr", envOr("MCP_HTTP_ADDR", "localhost:8000"), "HTTP listen address")
	storagePath := flag.String("db", envOr("PORTFOLIO_DB", "portfolio.db"), "SQLite database path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := service.Config{
		Transport:   *transport,
		HTTPAddr:    *httpAddr,
		StoragePath: *storagePath,
	}

	if err := service.Run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to serve portfolio MCP")
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
