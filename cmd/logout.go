package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear the stored token",
	Long: `Ends the current session. If unsaved messages exist you are asked
whether to save them as a conversation first. Local state is cleared
either way.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	a.session.Logout(cmd.Context(), func() bool {
		confirm := promptui.Prompt{
			Label:     "Save the current conversation before logging out",
			IsConfirm: true,
		}
		_, err := confirm.Run()
		return err == nil
	})

	fmt.Println("Logged out.")
	return nil
}
