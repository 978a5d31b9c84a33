package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/martinsuchenak/merakilife/cmd/report"
	"github.com/martinsuchenak/merakilife/internal/api"
	"github.com/martinsuchenak/merakilife/internal/config"
	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/mcp"
	"github.com/paularlott/cli"
)

const shutdownTimeout = 10 * time.Second

// ServerConfig holds configuration for running the server
type ServerConfig struct {
	Config     *config.Config
	MCPServer  *mcp.Server
	APIHandler *api.Handler
}

// NewHandler builds the routed, middleware-wrapped HTTP handler
func NewHandler(cfg *ServerConfig) http.Handler {
	mux := http.NewServeMux()

	cfg.APIHandler.RegisterRoutes(mux)
	mux.HandleFunc("/mcp", cfg.MCPServer.GetHTTPHandler())

	var handler http.Handler = mux
	if cfg.Config.IsAPIAuthEnabled() {
		handler = api.AuthMiddleware(cfg.Config.APIAuthToken, handler)
	}
	handler = api.SecurityHeadersMiddleware(handler)
	return api.LoggingMiddleware(handler)
}

// RunServer serves the API and MCP endpoints until ctx is cancelled
func RunServer(ctx context.Context, cfg *ServerConfig) error {
	server := &http.Server{
		Addr:              cfg.Config.ListenAddr,
		Handler:           NewHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
		}
	}()

	log.Info("Starting merakilife server", "addr", cfg.Config.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.Config.ListenAddr+"/api/")
	log.Info("MCP available", "url", "http://localhost"+cfg.Config.ListenAddr+"/mcp")
	if cfg.Config.IsAPIAuthEnabled() {
		log.Info("API authentication enabled")
	}
	cfg.MCPServer.LogStartup()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func Command(version string) *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the merakilife server",
		Description: "Serve the lifecycle report over an HTTP JSON API and an MCP endpoint",
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:  "listen-addr",
				Usage: "Listen address (default: ':8080', env MERAKILIFE_LISTEN_ADDR)",
			},
			&cli.StringFlag{
				Name:  "api-token",
				Usage: "Bearer token required on /api/ routes (env MERAKILIFE_API_TOKEN)",
			},
			&cli.StringFlag{
				Name:  "mcp-token",
				Usage: "Bearer token required on /mcp (env MERAKILIFE_MCP_TOKEN)",
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			opts := config.Options(cmd)
			opts.ListenAddr = cmd.GetString("listen-addr")
			opts.APIAuthToken = cmd.GetString("api-token")
			opts.MCPAuthToken = cmd.GetString("mcp-token")
			cfg := config.Load(opts)

			if err := cfg.Validate(); err != nil {
				return err
			}
			log.Info("Configuration loaded", "listen_addr", cfg.ListenAddr, "catalog", cfg.CatalogURL, "concurrency", cfg.Concurrency)

			service := report.NewService(cfg, version)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return RunServer(ctx, &ServerConfig{
				Config:     cfg,
				MCPServer:  mcp.NewServer(service, cfg.MCPAuthToken, version),
				APIHandler: api.NewHandler(service, version),
			})
		},
	}
}
