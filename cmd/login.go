package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session token",
	Long: `Authenticates against the configured backend with your email and
password. On success the access token is stored so later commands and
new shells reuse the session.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	emailPrompt := promptui.Prompt{Label: "Email"}
	email, err := emailPrompt.Run()
	if err != nil {
		return fmt.Errorf("reading email: %w", err)
	}

	passwordPrompt := promptui.Prompt{Label: "Password", Mask: '*'}
	password, err := passwordPrompt.Run()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	if err := a.session.Login(cmd.Context(), email, password); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s. %d saved conversation(s) available.\n",
		email, len(a.conv.Conversations()))
	return nil
}
