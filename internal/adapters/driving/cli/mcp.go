package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --http to start an HTTP server instead. In HTTP mode Prometheus metrics
are served on /metrics.

Tools: search_documents, ask, list_documents, index_document.
Resources: docrag://documents, docrag://documents/{id}.

Examples:
  # Stdio mode (default, for Claude Desktop)
  docrag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docrag mcp serve --http :8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "docrag": {
        "command": "/path/to/docrag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

var mcpHTTPAddr string

func init() {
	mcpServeCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	ownerID, err := owner()
	if err != nil {
		return nil, err
	}
	return mcp.NewServer(&mcp.Ports{
		Retrieval: retrievalService,
		Chat:      chatService,
		Documents: documentService,
		Ingest:    ingestService,
		OwnerID:   ownerID,
	})
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr, metricsHandler)
	}

	return server.Run(cmd.Context())
}
