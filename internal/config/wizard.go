package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/kbhargava/promptline/internal/persona"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .promptline.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to promptline! Let's configure your client.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. Backend URL.
	urlPrompt := promptui.Prompt{
		Label:   "Backend base URL",
		Default: defaults.BaseURL,
	}
	baseURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("base URL: %w", err)
	}

	// 2. Default persona.
	personas := persona.Seed()
	items := make([]string, len(personas))
	for i, p := range personas {
		items[i] = fmt.Sprintf("%s %s", p.Emoji, p.Name)
	}
	personaPrompt := promptui.Select{
		Label: "Default persona",
		Items: items,
	}
	personaIdx, _, err := personaPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("persona selection: %w", err)
	}

	// 3. Request timeout.
	timeoutPrompt := promptui.Prompt{
		Label:   "Request timeout in seconds",
		Default: strconv.Itoa(defaults.RequestTimeoutSeconds),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	timeoutStr, err := timeoutPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	timeout, _ := strconv.Atoi(timeoutStr)

	cfg := &Config{
		BaseURL:               baseURL,
		Persona:               personas[personaIdx].ID,
		RequestTimeoutSeconds: timeout,
		HistoryLimit:          defaults.HistoryLimit,
		Serve:                 defaults.Serve,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configPath := ".promptline.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
