package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "promptline",
	Short: "Terminal client for the promptline chat service",
	Long: `Promptline is a terminal client for an AI chat service. It manages
your login session, runs an interactive chat with selectable personas,
keeps your saved conversation history, and bundles a local demo backend
so everything also works without a hosted deployment.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".promptline.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
