// Package service hosts the portfolio assistant MCP server on stdio or HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/mcp/domain"
	"github.com/healclinics/shop-api/internal/portfolio"
)

const (
	serverName    = "mendix-portfolio-assistant"
	serverVersion = "0.1.0"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	Transport   string
	HTTPAddr    string
	StoragePath string
}

// Server hosts the MCP server and owns the portfolio store.
type Server struct {
	mcpServer *mcp.Server
	store     *portfolio.Store
}

// New opens the portfolio store and registers the four tools.
func New(storagePath string) (*Server, error) {
	store, err := portfolio.Open(storagePath)
	if err != nil {
		return nil, fmt.Errorf("open portfolio store: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, domain.CreateProjectTool(), domain.CreateProjectHandler(store))
	mcp.AddTool(mcpServer, domain.UpdateProjectProgressTool(), domain.UpdateProjectProgressHandler(store))
	mcp.AddTool(mcpServer, domain.TrackSkillTool(), domain.TrackSkillHandler(store))
	mcp.AddTool(mcpServer, domain.PortfolioStatusTool(), domain.PortfolioStatusHandler(store))

	return &Server{mcpServer: mcpServer, store: store}, nil
}

// Close releases the store held by the server.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Run creates and serves the MCP server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "portfolio.db"
	}

	server, err := New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer server.Close()

	switch cfg.Transport {
	case TransportStdio:
		return server.mcpServer.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return server.serveHTTP(ctx, cfg.HTTPAddr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveHTTP exposes the server over the streamable HTTP transport.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	if addr == "" {
		addr = "localhost:8000"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Portfolio MCP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
