// Package mcp exposes the chat backend to AI agents over the Model Context
// Protocol. Tools cover prompt generation and saved-conversation access using
// the credentials stored by `promptline login`.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kbhargava/promptline/internal/api"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Backend is the slice of the API client the MCP tools use.
type Backend interface {
	GenerateText(ctx context.Context, token, prompt, persona string) (string, error)
	Conversations(ctx context.Context, token string) ([]api.Conversation, error)
}

// Server wraps an MCP server that exposes chat tools.
type Server struct {
	backend        Backend
	token          string
	defaultPersona string
	mcp            *server.MCPServer
}

// NewServer creates a new MCP server backed by the given API client and
// bearer token. defaultPersona is used when a tool call does not name one.
func NewServer(backend Backend, token, defaultPersona string) *Server {
	s := &Server{
		backend:        backend,
		token:          token,
		defaultPersona: defaultPersona,
	}

	s.mcp = server.NewMCPServer(
		"promptline",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(sendPromptTool, s.handleSendPrompt)
	s.mcp.AddTool(listConversationsTool, s.handleListConversations)
	s.mcp.AddTool(getConversationTool, s.handleGetConversation)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
