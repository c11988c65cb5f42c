package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowsmith/mcp-node-catalog-go/internal/config"
	"github.com/flowsmith/mcp-node-catalog-go/internal/logger"
	"github.com/flowsmith/mcp-node-catalog-go/internal/metrics"
	"github.com/flowsmith/mcp-node-catalog-go/internal/server"
	"github.com/flowsmith/mcp-node-catalog-go/pkg/nodecatalog"
)

var (
	sourceURL    = flag.String("source-url", "", "Base URL of the remote catalog source (default: NODECAT_SOURCE_URL)")
	seedFile     = flag.String("seed-file", "", "Local YAML seed file to bootstrap the catalog without network access")
	snapshotPath = flag.String("snapshot-path", "", "libsql file for last-good snapshot persistence")
	transport    = flag.String("transport", "stdio", "Transport to use: stdio or sse")
	addr         = flag.String("addr", ":8080", "Address to listen on when using SSE transport")
	sseEndpoint  = flag.String("sse-endpoint", "/sse", "SSE endpoint path when using SSE transport")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, closing server...")
		cancel()
	}()

	cfg := config.NewConfig()

	// Initialize metrics (noop if disabled)
	metrics.InitFromEnv()

	// Override with command line flags if provided
	if *sourceURL != "" {
		cfg.SourceURL = *sourceURL
	}
	if *seedFile != "" {
		cfg.SeedFile = *seedFile
	}
	if *snapshotPath != "" {
		cfg.SnapshotPath = *snapshotPath
	}

	zlog := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = zlog.Sync() }()

	svc, err := nodecatalog.NewService(&nodecatalog.Config{
		SourceURL:       cfg.SourceURL,
		SeedFile:        cfg.SeedFile,
		SnapshotPath:    cfg.SnapshotPath,
		RequestInterval: cfg.RequestInterval,
		Logger:          zlog,
	})
	if err != nil {
		log.Fatalf("Failed to create catalog service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Printf("Error closing catalog service: %v", err)
		}
	}()

	populate(ctx, cfg, svc, zlog)

	mcpServer := server.NewMCPServer(svc.Catalog(), svc.Refresher(), cfg.SourceURL)

	log.Println("Starting MCP Node Catalog server...")
	switch *transport {
	case "stdio":
		go func() {
			if err := mcpServer.Run(ctx); err != nil {
				log.Printf("Server error: %v", err)
			}
		}()
	case "sse":
		go func() {
			if err := mcpServer.RunSSE(ctx, *addr, *sseEndpoint); err != nil {
				log.Printf("SSE server error: %v", err)
			}
		}()
	default:
		log.Fatalf("unknown transport: %s (expected: stdio or sse)", *transport)
	}

	<-ctx.Done()

	log.Println("Server stopped")
}

// populate brings the catalog up before serving: persisted snapshot first,
// then an initial refresh from the remote source when one is configured.
// A failed refresh is not fatal while any snapshot exists.
func populate(ctx context.Context, cfg *config.Config, svc *nodecatalog.Service, zlog logger.Logger) {
	if err := svc.Bootstrap(ctx); err != nil {
		zlog.Warn("snapshot bootstrap failed", logger.Error(err))
	}
	if cfg.SourceURL == "" {
		return
	}
	refreshCtx, cancel := context.WithTimeout(ctx, cfg.RefreshTimeout)
	defer cancel()
	result, err := svc.Refresh(refreshCtx, false)
	if err != nil {
		zlog.Warn("initial catalog refresh failed; discovery tools will error until a refresh succeeds",
			logger.Error(err))
		return
	}
	zlog.Info("catalog ready",
		logger.Int("nodes", result.NodeCount),
		logger.Bool("refreshed", result.Refreshed),
		logger.Bool("fellBack", result.FellBack))
}
