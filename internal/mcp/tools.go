package mcp

import "github.com/mark3labs/mcp-go/mcp"

// sendPromptTool defines the send_prompt MCP tool.
var sendPromptTool = mcp.NewTool("send_prompt",
	mcp.WithDescription("Send a prompt to the chat backend and return the assistant reply."),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("The user prompt to send"),
	),
	mcp.WithString("persona",
		mcp.Description("Persona to answer as (defaults to the configured persona)"),
		mcp.Enum("friendly", "sarcastic", "dev", "translator"),
	),
)

// listConversationsTool defines the list_conversations MCP tool.
var listConversationsTool = mcp.NewTool("list_conversations",
	mcp.WithDescription("List the saved conversations for the logged-in account, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of conversations to return (default 20)"),
	),
)

// getConversationTool defines the get_conversation MCP tool.
var getConversationTool = mcp.NewTool("get_conversation",
	mcp.WithDescription("Get the full message transcript of one saved conversation."),
	mcp.WithString("conversation_id",
		mcp.Required(),
		mcp.Description("ID of the conversation, as returned by list_conversations"),
	),
)
