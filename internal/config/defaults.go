package config

import "github.com/kbhargava/promptline/internal/persona"

// DefaultConfig returns the configuration used when no file exists. The base
// URL matches the hosted demo backend's local default.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:               "http://localhost:8000",
		Persona:               persona.DefaultID,
		RequestTimeoutSeconds: 60,
		HistoryLimit:          50,
		Serve: ServeConfig{
			Port:    8000,
			DataDir: "",
			Model:   "gpt-4o-mini",
		},
	}
}
