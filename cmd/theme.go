package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbhargava/promptline/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the color theme",
	Long: `The theme preference lives outside the session: it survives login and
logout. When no explicit preference is stored the terminal background
is detected, falling back to dark.`,
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active theme and where it came from",
	RunE:  runThemeShow,
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark>",
	Short:     "Set and persist the theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"light", "dark"},
	RunE:      runThemeSet,
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE:  runThemeToggle,
}

func init() {
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeToggleCmd)
	rootCmd.AddCommand(themeCmd)
}

func themeController() (*theme.Controller, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dir, err := stateDir(cfg)
	if err != nil {
		return nil, err
	}
	return theme.NewController(theme.NewStore(dir), theme.DetectTerminal)
}

func runThemeShow(cmd *cobra.Command, args []string) error {
	ctl, err := themeController()
	if err != nil {
		return err
	}

	source := "terminal detection or default"
	if ctl.Explicit() {
		source = "stored preference"
	}
	fmt.Printf("%s (%s)\n", ctl.Active(), source)
	return nil
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	pref := theme.Preference(args[0])
	if pref != theme.Light && pref != theme.Dark {
		return fmt.Errorf("theme must be light or dark, got %q", args[0])
	}

	ctl, err := themeController()
	if err != nil {
		return err
	}
	if err := ctl.Set(pref); err != nil {
		return err
	}
	fmt.Printf("Theme set to %s.\n", pref)
	return nil
}

func runThemeToggle(cmd *cobra.Command, args []string) error {
	ctl, err := themeController()
	if err != nil {
		return err
	}
	if err := ctl.Toggle(); err != nil {
		return err
	}
	fmt.Printf("Theme set to %s.\n", ctl.Active())
	return nil
}
