package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
	"github.com/flowsmith/mcp-node-catalog-go/internal/buildinfo"
	"github.com/flowsmith/mcp-node-catalog-go/internal/catalog"
	"github.com/flowsmith/mcp-node-catalog-go/internal/ingest"
	"github.com/flowsmith/mcp-node-catalog-go/internal/metrics"
)

const serverName = "mcp-node-catalog-go"

// MCPServer handles MCP protocol communication for catalog discovery.
type MCPServer struct {
	server    *mcp.Server
	svc       *catalog.Service
	refresher *ingest.Refresher // nil when no remote source is configured
	source    string
}

// NewMCPServer creates a new MCP server over the given catalog service.
// refresher may be nil; the refresh_catalog tool then reports that no
// source is configured.
func NewMCPServer(svc *catalog.Service, refresher *ingest.Refresher, source string) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: buildinfo.Version,
	}, nil)

	s := &MCPServer{
		server:    server,
		svc:       svc,
		refresher: refresher,
		source:    source,
	}

	// initialize metrics from env (no-op if disabled)
	metrics.InitFromEnv()
	s.setupToolHandlers()
	return s
}

// setupToolHandlers registers all MCP tools
func (s *MCPServer) setupToolHandlers() {
	searchNodesInputSchema, err := jsonschema.For[apptype.SearchNodesArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for SearchNodesArgs: %v", err))
	}
	searchNodesOutputSchema, err := jsonschema.For[apptype.SearchResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for SearchResult: %v", err))
	}
	discoverByCategoryInputSchema, err := jsonschema.For[apptype.DiscoverByCategoryArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for DiscoverByCategoryArgs: %v", err))
	}
	discoverByCategoryOutputSchema, err := jsonschema.For[apptype.NodeListResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for NodeListResult (category): %v", err))
	}
	discoverByIntentInputSchema, err := jsonschema.For[apptype.DiscoverByIntentArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for DiscoverByIntentArgs: %v", err))
	}
	// Fresh NodeListResult schema per tool to avoid re-resolving the same root
	discoverByIntentOutputSchema, err := jsonschema.For[apptype.NodeListResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for NodeListResult (intent): %v", err))
	}
	getNodeInputSchema, err := jsonschema.For[apptype.GetNodeArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for GetNodeArgs: %v", err))
	}
	getNodeOutputSchema, err := jsonschema.For[apptype.CatalogEntity]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for CatalogEntity: %v", err))
	}
	suggestChainsInputSchema, err := jsonschema.For[apptype.SuggestChainsArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for SuggestChainsArgs: %v", err))
	}
	suggestChainsOutputSchema, err := jsonschema.For[apptype.ChainSuggestionsResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for ChainSuggestionsResult: %v", err))
	}
	statisticsInputSchema, err := jsonschema.For[apptype.NodeStatisticsArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for NodeStatisticsArgs: %v", err))
	}
	statisticsOutputSchema, err := jsonschema.For[apptype.CatalogStatistics]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for CatalogStatistics: %v", err))
	}
	refreshInputSchema, err := jsonschema.For[apptype.RefreshCatalogArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for RefreshCatalogArgs: %v", err))
	}
	refreshOutputSchema, err := jsonschema.For[apptype.RefreshResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for RefreshResult: %v", err))
	}
	healthInputSchema, err := jsonschema.For[apptype.HealthArgs]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for HealthArgs: %v", err))
	}
	healthOutputSchema, err := jsonschema.For[apptype.HealthResult]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for HealthResult: %v", err))
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "search_nodes",
		Title:        "Search Nodes",
		Description:  "Search the node catalog by free text, with optional category filters and fuzzy matching.",
		InputSchema:  searchNodesInputSchema,
		OutputSchema: searchNodesOutputSchema,
	}, s.handleSearchNodes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "discover_by_category",
		Title:        "Discover By Category",
		Description:  "List catalog nodes for a category label or alias (e.g. \"ai\", \"Communication\").",
		InputSchema:  discoverByCategoryInputSchema,
		OutputSchema: discoverByCategoryOutputSchema,
	}, s.handleDiscoverByCategory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "discover_by_intent",
		Title:        "Discover By Intent",
		Description:  "List catalog nodes serving a short natural-language intent (e.g. \"send message\").",
		InputSchema:  discoverByIntentInputSchema,
		OutputSchema: discoverByIntentOutputSchema,
	}, s.handleDiscoverByIntent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "get_node",
		Title:        "Get Node",
		Description:  "Fetch one catalog node by its stable identifier.",
		InputSchema:  getNodeInputSchema,
		OutputSchema: getNodeOutputSchema,
	}, s.handleGetNode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "suggest_node_chains",
		Title:        "Suggest Node Chains",
		Description:  "Propose ordered node chains for a natural-language workflow intent.",
		InputSchema:  suggestChainsInputSchema,
		OutputSchema: suggestChainsOutputSchema,
	}, s.handleSuggestChains)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "node_statistics",
		Title:        "Node Statistics",
		Description:  "Aggregate catalog counts: totals, AI/trigger partitions and top categories.",
		InputSchema:  statisticsInputSchema,
		OutputSchema: statisticsOutputSchema,
	}, s.handleStatistics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "refresh_catalog",
		Title:        "Refresh Catalog",
		Description:  "Pull the latest node definitions from the remote source and swap the catalog.",
		InputSchema:  refreshInputSchema,
		OutputSchema: refreshOutputSchema,
	}, s.handleRefreshCatalog)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "health_check",
		Title:        "Health Check",
		Description:  "Returns server, build and catalog information.",
		InputSchema:  healthInputSchema,
		OutputSchema: healthOutputSchema,
	}, s.handleHealth)
}

// handleSearchNodes handles the search_nodes tool call
func (s *MCPServer) handleSearchNodes(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.SearchNodesArgs],
) (*mcp.CallToolResultFor[apptype.SearchResult], error) {
	done := metrics.TimeTool("search_nodes")
	var success bool
	defer func() { done(success) }()

	args := params.Arguments
	result, err := s.svc.SearchNodes(args.Query, catalog.SearchOptions{
		Categories:    args.Categories,
		Subcategories: args.Subcategories,
		MaxResults:    args.MaxResults,
		FuzzySearch:   args.FuzzySearch,
	})
	if err != nil {
		return nil, fmt.Errorf("search failed for query %q: %w", args.Query, err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.SearchResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Found %d nodes for %q", len(result.Nodes), args.Query),
			},
		},
		StructuredContent: result,
	}, nil
}

// handleDiscoverByCategory handles the discover_by_category tool call
func (s *MCPServer) handleDiscoverByCategory(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.DiscoverByCategoryArgs],
) (*mcp.CallToolResultFor[apptype.NodeListResult], error) {
	done := metrics.TimeTool("discover_by_category")
	var success bool
	defer func() { done(success) }()

	nodes, err := s.svc.DiscoverByCategory(params.Arguments.Category)
	if err != nil {
		return nil, fmt.Errorf("category discovery failed for %q: %w", params.Arguments.Category, err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.NodeListResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Found %d nodes in category %q", len(nodes), params.Arguments.Category),
			},
		},
		StructuredContent: apptype.NodeListResult{Nodes: nodes, Count: len(nodes)},
	}, nil
}

// handleDiscoverByIntent handles the discover_by_intent tool call
func (s *MCPServer) handleDiscoverByIntent(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.DiscoverByIntentArgs],
) (*mcp.CallToolResultFor[apptype.NodeListResult], error) {
	done := metrics.TimeTool("discover_by_intent")
	var success bool
	defer func() { done(success) }()

	nodes, err := s.svc.DiscoverByIntent(params.Arguments.Phrase)
	if err != nil {
		return nil, fmt.Errorf("intent discovery failed for %q: %w", params.Arguments.Phrase, err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.NodeListResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Found %d nodes for intent %q", len(nodes), params.Arguments.Phrase),
			},
		},
		StructuredContent: apptype.NodeListResult{Nodes: nodes, Count: len(nodes)},
	}, nil
}

// handleGetNode handles the get_node tool call
func (s *MCPServer) handleGetNode(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.GetNodeArgs],
) (*mcp.CallToolResultFor[apptype.CatalogEntity], error) {
	done := metrics.TimeTool("get_node")
	var success bool
	defer func() { done(success) }()

	node, err := s.svc.Node(params.Arguments.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.CatalogEntity]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%s (%s)", node.DisplayName, node.Identifier)},
		},
		StructuredContent: node,
	}, nil
}

// handleSuggestChains handles the suggest_node_chains tool call
func (s *MCPServer) handleSuggestChains(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.SuggestChainsArgs],
) (*mcp.CallToolResultFor[apptype.ChainSuggestionsResult], error) {
	done := metrics.TimeTool("suggest_node_chains")
	var success bool
	defer func() { done(success) }()

	suggestions, err := s.svc.SuggestChains(apptype.ChainIntent{
		Text:        params.Arguments.Text,
		Preferences: params.Arguments.Preferences,
	})
	if err != nil {
		return nil, fmt.Errorf("chain suggestion failed for %q: %w", params.Arguments.Text, err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.ChainSuggestionsResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Proposed %d chains for %q", len(suggestions), params.Arguments.Text),
			},
		},
		StructuredContent: apptype.ChainSuggestionsResult{Suggestions: suggestions},
	}, nil
}

// handleStatistics handles the node_statistics tool call
func (s *MCPServer) handleStatistics(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.NodeStatisticsArgs],
) (*mcp.CallToolResultFor[apptype.CatalogStatistics], error) {
	done := metrics.TimeTool("node_statistics")
	var success bool
	defer func() { done(success) }()

	stats, err := s.svc.Statistics()
	if err != nil {
		return nil, fmt.Errorf("statistics failed: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.CatalogStatistics]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Catalog holds %d nodes", stats.TotalNodes)},
		},
		StructuredContent: stats,
	}, nil
}

// handleRefreshCatalog handles the refresh_catalog tool call
func (s *MCPServer) handleRefreshCatalog(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.RefreshCatalogArgs],
) (*mcp.CallToolResultFor[apptype.RefreshResult], error) {
	done := metrics.TimeTool("refresh_catalog")
	var success bool
	defer func() { done(success) }()

	if s.refresher == nil {
		return nil, errors.New("no catalog source configured; refresh is unavailable")
	}
	result, err := s.refresher.Refresh(ctx, params.Arguments.Force)
	if err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}
	success = true

	text := "Catalog unchanged"
	switch {
	case result.Refreshed:
		text = fmt.Sprintf("Catalog refreshed: %d nodes at revision %s", result.NodeCount, result.Revision)
	case result.FellBack:
		text = fmt.Sprintf("Refresh failed; kept last good snapshot of %d nodes", result.NodeCount)
	}
	return &mcp.CallToolResultFor[apptype.RefreshResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: result,
	}, nil
}

// handleHealth returns basic server health information
func (s *MCPServer) handleHealth(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.HealthArgs],
) (*mcp.CallToolResultFor[apptype.HealthResult], error) {
	done := metrics.TimeTool("health_check")
	defer func() { done(true) }()

	nodeCount := s.svc.Store().Len()
	metrics.Default().ObserveCatalogSize(nodeCount)
	res := apptype.HealthResult{
		Name:      serverName,
		Version:   buildinfo.Version,
		Revision:  buildinfo.Revision,
		BuildDate: buildinfo.BuildDate,
		NodeCount: nodeCount,
		Source:    s.source,
	}
	return &mcp.CallToolResultFor[apptype.HealthResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: "ok"}},
		StructuredContent: res,
	}, nil
}

// observeSize periodically reports the catalog size gauge.
func (s *MCPServer) observeSize(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.Default().ObserveCatalogSize(s.svc.Store().Len())
			}
		}
	}()
}

// Run starts the MCP server with stdio transport
func (s *MCPServer) Run(ctx context.Context) error {
	s.observeSize(ctx)
	transport := mcp.NewStdioTransport()
	return s.server.Run(ctx, transport)
}

// RunSSE starts the MCP server over SSE at the given address and endpoint
func (s *MCPServer) RunSSE(ctx context.Context, addr string, endpoint string) error {
	s.observeSize(ctx)
	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server { return s.server })
	mux := http.NewServeMux()
	mux.Handle(endpoint, handler)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("SSE MCP server listening on %s%s", addr, endpoint)
	return srv.ListenAndServe()
}
