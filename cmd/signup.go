package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account",
	Long: `Registers a new account against the configured backend. Signup never
logs you in; run ` + "`promptline login`" + ` afterwards.`,
	RunE: runSignup,
}

func init() {
	rootCmd.AddCommand(signupCmd)
}

func runSignup(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	namePrompt := promptui.Prompt{Label: "Name"}
	name, err := namePrompt.Run()
	if err != nil {
		return fmt.Errorf("reading name: %w", err)
	}

	emailPrompt := promptui.Prompt{Label: "Email"}
	email, err := emailPrompt.Run()
	if err != nil {
		return fmt.Errorf("reading email: %w", err)
	}

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(s string) error {
			if len(s) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}
			return nil
		},
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	return a.session.Signup(cmd.Context(), name, email, password)
}
