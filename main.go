// wikibridge MCP Server - A Model Context Protocol server for wikis
// Provides one set of tools that works against both wiki API generations:
// the endpoint is probed once at startup and every tool behaves identically
// whether the server speaks the modern resource API or the legacy action API.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/wikibridge/tools"
	"github.com/olgasafonova/wikibridge/tracing"
	"github.com/olgasafonova/wikibridge/wiki"
)

const (
	ServerName    = "wikibridge"
	ServerVersion = "1.0.0"
)

func main() {
	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Load configuration from environment
	config, err := wiki.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize tracing (no-op unless enabled via OTEL_* environment)
	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Tracing shutdown failed", "error", err)
		}
	}()

	// Create the wiki client. No network I/O yet: the protocol probe runs
	// on the first tool call.
	client := wiki.NewClient(config, wiki.WithLogger(logger))

	// Optional Prometheus endpoint
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go serveMetrics(addr, logger)
	}

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger: logger,
		Instructions: `wikibridge provides tools for reading, searching and editing a wiki.

The same tools work on both wiki API generations; the server detects the
right protocol automatically.

Available tools:
- wiki_get_page: Get a page (metadata, wikitext or HTML)
- wiki_get_file: Get a hosted file's description and renditions
- wiki_get_media_links: List the files used on a page
- wiki_get_language_links: List a page's other-language counterparts
- wiki_search_pages: Full-text content search
- wiki_search_titles: Title autocomplete
- wiki_get_revision: Get one revision with its size delta
- wiki_get_history: List a page's revisions with optional filtering
- wiki_compare_revisions: Line-level diff between two revisions
- wiki_create_page: Create a new page (requires authentication)
- wiki_update_page: Replace a page's content (requires authentication)

Configure via environment variables:
- WIKI_URL: Base wiki URL, without api.php or rest.php (required)
- WIKI_TOKEN: OAuth bearer token (for editing)
- WIKI_CSRF_TOKEN: Pre-obtained CSRF token for cookie-based sessions
- WIKI_TIMEOUT: Request timeout (e.g. "30s")
- WIKI_USER_AGENT: Custom User-Agent header`,
	})

	// Register all tools
	registry := tools.NewHandlerRegistry(client, logger)
	registry.RegisterAll(server)

	// Run server on stdio transport
	logger.Info("Starting wikibridge MCP server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.BaseURL,
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// serveMetrics exposes Prometheus metrics on a side HTTP listener.
func serveMetrics(addr string, logger *slog.Logger) {
	logger.Info("Serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, metricsMux()); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
