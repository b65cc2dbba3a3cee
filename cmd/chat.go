package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/progress"
	"github.com/kbhargava/promptline/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts the interactive chat REPL. Type a prompt to send it; slash
commands control the session:

  /persona [id]   show or switch the reply persona
  /history        list your saved conversations
  /load <n>       load a saved conversation into the chat
  /save [title]   save the current messages as a conversation
  /theme          toggle between light and dark output
  /logout         end the session and exit
  /quit           exit without logging out`,
}

func init() {
	chatCmd.RunE = runChat
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := a.conv.FetchHistory(ctx); err != nil {
		// Non-fatal: chatting still works without the saved list.
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: could not fetch history:", err)
	}

	spinner := progress.NewSpinner()
	fmt.Println("Connected. Type /help for commands, /quit to exit.")

	for {
		prompt := promptui.Prompt{Label: "you"}
		line, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := a.runSlashCommand(cmd, line)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			if done {
				return nil
			}
			continue
		}

		spinner.Start("thinking")
		err = a.conv.SendPrompt(ctx, line)
		spinner.Stop()
		if err != nil {
			// The controller already surfaced a notification; an expired
			// session additionally ends the REPL.
			if a.session.State() != session.Authenticated {
				return fmt.Errorf("session expired")
			}
			continue
		}

		a.printLastReply()
	}
}

// runSlashCommand handles one /command line. It returns true when the REPL
// should exit.
func (a *app) runSlashCommand(cmd *cobra.Command, line string) (bool, error) {
	fields := strings.Fields(line)
	name, rest := fields[0], fields[1:]

	switch name {
	case "/help":
		fmt.Println(chatCmd.Long)
		return false, nil

	case "/persona":
		if len(rest) == 0 {
			fmt.Printf("Active persona: %s\n", a.conv.PersonaID())
			return false, nil
		}
		if err := a.conv.SetPersona(rest[0]); err != nil {
			return false, err
		}
		fmt.Printf("Persona switched to %s.\n", rest[0])
		return false, nil

	case "/history":
		a.printHistory()
		return false, nil

	case "/load":
		if len(rest) == 0 {
			return false, fmt.Errorf("usage: /load <number>")
		}
		conv, err := a.conversationByArg(rest[0])
		if err != nil {
			return false, err
		}
		a.conv.LoadConversation(conv)
		fmt.Printf("Loaded %q (%d messages).\n", conv.Title, len(conv.Messages))
		a.printTranscript(conv.Messages)
		return false, nil

	case "/save":
		return false, a.saveCurrent(cmd, strings.Join(rest, " "))

	case "/theme":
		if err := a.themes.Toggle(); err != nil {
			return false, err
		}
		fmt.Printf("Theme set to %s.\n", a.themes.Active())
		return false, nil

	case "/logout":
		a.session.Logout(cmd.Context(), func() bool {
			confirm := promptui.Prompt{Label: "Save the current conversation first", IsConfirm: true}
			_, err := confirm.Run()
			return err == nil
		})
		fmt.Println("Logged out.")
		return true, nil

	case "/quit", "/exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %s; try /help", name)
	}
}

func (a *app) saveCurrent(cmd *cobra.Command, title string) error {
	msgs := a.conv.Messages()
	if len(msgs) == 0 {
		return fmt.Errorf("nothing to save yet")
	}
	token, ok := a.session.Token()
	if !ok {
		return fmt.Errorf("not logged in")
	}
	if title == "" {
		title = firstWords(msgs[0].Content, 6)
	}
	if err := a.client.SaveConversation(cmd.Context(), token, title, msgs); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	fmt.Printf("Saved as %q.\n", title)
	return a.conv.FetchHistory(cmd.Context())
}

func (a *app) conversationByArg(arg string) (api.Conversation, error) {
	convs := a.recentConversations()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(convs) {
			return api.Conversation{}, fmt.Errorf("no conversation %d; run /history", n)
		}
		return convs[n-1], nil
	}
	for _, conv := range convs {
		if conv.ID == arg {
			return conv, nil
		}
	}
	return api.Conversation{}, fmt.Errorf("no conversation with id %q; run /history", arg)
}

func (a *app) printHistory() {
	convs := a.recentConversations()
	if len(convs) == 0 {
		fmt.Println("No saved conversations.")
		return
	}
	pal := a.themes.Palette()
	for i, conv := range convs {
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s%2d.%s %s %s(%d messages)%s\n",
			pal.Dim, i+1, pal.Reset, title, pal.Dim, len(conv.Messages), pal.Reset)
	}
}

func (a *app) printLastReply() {
	msgs := a.conv.Messages()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if last.Role != api.RoleAssistant {
		return
	}
	pal := a.themes.Palette()
	fmt.Printf("%s%s>%s %s\n", pal.Assistant, a.conv.PersonaID(), pal.Reset, last.Content)
}

func (a *app) printTranscript(msgs []api.Message) {
	pal := a.themes.Palette()
	for _, msg := range msgs {
		color := pal.User
		if msg.Role == api.RoleAssistant {
			color = pal.Assistant
		}
		fmt.Printf("%s%s>%s %s\n", color, msg.Role, pal.Reset, msg.Content)
	}
}

// firstWords returns up to n leading words of s, for derived titles.
func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
