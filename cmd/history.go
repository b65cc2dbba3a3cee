package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbhargava/promptline/internal/export"
	"github.com/kbhargava/promptline/internal/search"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Work with saved conversations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <number|id>",
	Short: "Print the transcript of one saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var exportOutput string

var historyExportCmd = &cobra.Command{
	Use:   "export <number|id>",
	Short: "Export a saved conversation as a standalone HTML transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var searchLimit int

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantically search your saved conversations",
	Long: `Builds an in-memory embedding index over every turn of your saved
conversations and returns the closest matches. Requires OPENAI_API_KEY
for embeddings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHistorySearch,
}

func init() {
	historyExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	historySearchCmd.Flags().IntVar(&searchLimit, "limit", 5, "maximum number of matches")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historySearchCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyApp wires the app and fetches the saved-conversation list.
func historyApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	if err := a.conv.FetchHistory(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := historyApp(cmd)
	if err != nil {
		return err
	}
	a.printHistory()
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	a, err := historyApp(cmd)
	if err != nil {
		return err
	}

	conv, err := a.conversationByArg(args[0])
	if err != nil {
		return err
	}

	title := conv.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Printf("%s\n\n", title)
	a.printTranscript(conv.Messages)
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	a, err := historyApp(cmd)
	if err != nil {
		return err
	}

	conv, err := a.conversationByArg(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.NewRenderer().Render(out, conv); err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", exportOutput)
	}
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	a, err := historyApp(cmd)
	if err != nil {
		return err
	}

	convs := a.recentConversations()
	if len(convs) == 0 {
		fmt.Println("No saved conversations to search.")
		return nil
	}

	index, err := search.NewOpenAIIndex(os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := index.Add(ctx, convs); err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results, err := index.Search(ctx, query, searchLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	pal := a.themes.Palette()
	for _, r := range results {
		title := r.ConversationTitle
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s%.2f%s  %s %s[%s]%s\n    %s\n",
			pal.Dim, r.Similarity, pal.Reset, title, pal.Dim, r.Role, pal.Reset, r.Content)
	}
	return nil
}
