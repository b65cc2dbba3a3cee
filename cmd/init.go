package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kbhargava/promptline/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize promptline configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the backend URL and default persona and generates a .promptline.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
