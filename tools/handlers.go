package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/wikibridge/metrics"
	"github.com/olgasafonova/wikibridge/tracing"
	"github.com/olgasafonova/wikibridge/wiki"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *wiki.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *wiki.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{client: client, logger: logger}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "GetPage":
		register(h, server, tool, spec, h.client.GetPageMCP)
	case "GetRevision":
		register(h, server, tool, spec, h.client.GetRevisionMCP)
	case "GetHistory":
		register(h, server, tool, spec, h.client.GetHistoryMCP)
	case "CompareRevisions":
		register(h, server, tool, spec, h.client.CompareRevisionsMCP)
	case "GetLanguageLinks":
		register(h, server, tool, spec, h.client.GetLanguageLinksMCP)
	case "GetMediaLinks":
		register(h, server, tool, spec, h.client.GetMediaLinksMCP)
	case "GetFile":
		register(h, server, tool, spec, h.client.GetFileMCP)
	case "SearchPages":
		register(h, server, tool, spec, h.client.SearchPagesMCP)
	case "SearchTitles":
		register(h, server, tool, spec, h.client.SearchTitlesMCP)
	case "CreatePage":
		register(h, server, tool, spec, h.client.CreatePageMCP)
	case "UpdatePage":
		register(h, server, tool, spec, h.client.UpdatePageMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		defer h.recoverPanic(spec.Name)

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		span.SetAttributes(
			attribute.String("mcp.tool.name", spec.Name),
			attribute.String("mcp.tool.category", spec.Category),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers.
func (h *HandlerRegistry) recoverPanic(toolName string) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case wiki.GetPageArgs:
		attrs = append(attrs, "title", a.Title, "format", a.Format)
	case wiki.GetRevisionArgs:
		attrs = append(attrs, "revision_id", a.ID)
	case wiki.GetHistoryArgs:
		attrs = append(attrs, "title", a.Title, "filter", a.Filter)
	case wiki.CompareRevisionsArgs:
		attrs = append(attrs, "from", a.From, "to", a.To)
	case wiki.GetLanguageLinksArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.GetMediaLinksArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.GetFileArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.SearchPagesArgs:
		attrs = append(attrs, "query", a.Query)
	case wiki.SearchTitlesArgs:
		attrs = append(attrs, "query", a.Query)
	case wiki.CreatePageArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.UpdatePageArgs:
		attrs = append(attrs, "title", a.Title, "base_revision_id", a.BaseRevisionID)
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case wiki.GetHistoryResult:
		attrs = append(attrs, "revisions", r.Count)
	case wiki.GetLanguageLinksResult:
		attrs = append(attrs, "links", r.Count)
	case wiki.GetMediaLinksResult:
		attrs = append(attrs, "files", r.Count)
	case wiki.SearchResults:
		attrs = append(attrs, "results_count", r.Count)
	case wiki.EditPageResult:
		if r.Page != nil {
			attrs = append(attrs, "revision_id", r.Page.Latest.ID)
		}
	}

	h.logger.Info("Tool executed", attrs...)
}
