package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kbhargava/promptline/internal/api"
)

// handleSendPrompt forwards a prompt to the backend and returns the reply.
func (s *Server) handleSendPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}
	if strings.TrimSpace(prompt) == "" {
		return mcp.NewToolResultError("prompt must not be blank"), nil
	}

	personaID := request.GetString("persona", s.defaultPersona)

	reply, err := s.backend.GenerateText(ctx, s.token, prompt, personaID)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return mcp.NewToolResultError("session expired; run `promptline login` and restart the MCP server"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("generate failed: %v", err)), nil
	}

	return mcp.NewToolResultText(reply), nil
}

// handleListConversations returns the saved-conversation summaries.
func (s *Server) handleListConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	convs, err := s.conversations(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(convs) == 0 {
		return mcp.NewToolResultText("No saved conversations."), nil
	}
	if len(convs) > limit {
		convs = convs[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d conversation(s):\n", len(convs))
	for _, conv := range convs {
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&sb, "\n- id: %s\n  title: %s\n  turns: %d\n", conv.ID, title, len(conv.Messages))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetConversation returns the full transcript of one conversation.
func (s *Server) handleGetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: conversation_id"), nil
	}

	convs, err := s.conversations(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, conv := range convs {
		if conv.ID == id {
			return mcp.NewToolResultText(formatTranscript(conv)), nil
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("no conversation with id %q", id)), nil
}

func (s *Server) conversations(ctx context.Context) ([]api.Conversation, error) {
	convs, err := s.backend.Conversations(ctx, s.token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, errors.New("session expired; run `promptline login` and restart the MCP server")
		}
		return nil, fmt.Errorf("fetching conversations: %w", err)
	}
	return convs, nil
}

func formatTranscript(conv api.Conversation) string {
	var sb strings.Builder
	title := conv.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&sb, "# %s\n", title)
	for _, msg := range conv.Messages {
		fmt.Fprintf(&sb, "\n[%s]\n%s\n", msg.Role, msg.Content)
	}
	return sb.String()
}
