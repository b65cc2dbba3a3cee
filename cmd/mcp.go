package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/auth"
	"github.com/kbhargava/promptline/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server for AI agent access",
	Long: `Starts a Model Context Protocol server on stdio exposing chat tools:
send_prompt, list_conversations, get_conversation. Uses the token stored
by ` + "`promptline login`" + `.

Example Claude Desktop configuration:

  {
    "mcpServers": {
      "promptline": {
        "command": "promptline",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir, err := stateDir(cfg)
	if err != nil {
		return err
	}
	creds, err := auth.NewStore(dir).Load()
	if err != nil {
		return fmt.Errorf("loading stored token: %w", err)
	}
	if creds.Token == "" {
		return fmt.Errorf("not logged in; run `promptline login` first")
	}

	client := api.New(cfg.BaseURL, cfg.RequestTimeout())
	srv := mcp.NewServer(client, creds.Token, cfg.Persona)

	// Stdout carries the MCP protocol; nothing else may write to it.
	return srv.Serve()
}
