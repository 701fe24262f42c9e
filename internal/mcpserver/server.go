package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specwright/ConstructQA/internal/rag"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

const Version = "0.1.0"

// Server exposes the question-answering and extraction pipeline over the
// Model Context Protocol, so agent hosts can use the corpus as a tool.
type Server struct {
	ragService rag.Service
	server     *mcp.Server
	logger     *logger_i.Logger
}

func NewServer(ragService rag.Service) *Server {
	impl := &mcp.Implementation{
		Name:    "constructqa",
		Version: Version,
	}

	s := &Server{
		ragService: ragService,
		server:     mcp.NewServer(impl, nil),
		logger:     logger_i.NewLogger("McpServer"),
	}

	s.registerTools()

	return s
}

// Run serves over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server running on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
