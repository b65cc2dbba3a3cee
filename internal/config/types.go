package config

// ServeConfig holds settings for the bundled demo backend.
type ServeConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	DataDir         string `yaml:"data_dir" koanf:"data_dir"`
	Model           string `yaml:"model" koanf:"model"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// Config is the top-level promptline configuration, corresponding to
// .promptline.yml.
type Config struct {
	BaseURL               string      `yaml:"base_url" koanf:"base_url"`
	Persona               string      `yaml:"persona" koanf:"persona"`
	RequestTimeoutSeconds int         `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
	HistoryLimit          int         `yaml:"history_limit" koanf:"history_limit"`
	StateDir              string      `yaml:"state_dir" koanf:"state_dir"`
	Serve                 ServeConfig `yaml:"serve" koanf:"serve"`
}
