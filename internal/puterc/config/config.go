package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the client configuration.
type Config struct {
	APIBaseURL          string   `toml:"api_base_url" mapstructure:"api_base_url"`
	GUIOrigin           string   `toml:"gui_origin" mapstructure:"gui_origin"`
	Token               string   `toml:"token" mapstructure:"token"`
	Model               string   `toml:"model" mapstructure:"model"`
	AllowTempGuest      bool     `toml:"allow_temp_guest" mapstructure:"allow_temp_guest"`
	TempGuestPerRequest bool     `toml:"temp_guest_per_request" mapstructure:"temp_guest_per_request"`
	AuthTimeoutSeconds  int      `toml:"auth_timeout_seconds" mapstructure:"auth_timeout_seconds"`
	CallbackPort        int      `toml:"callback_port" mapstructure:"callback_port"`
	PromptDirs          []string `toml:"prompt_dirs" mapstructure:"prompt_dirs"`
}

// AuthTimeout returns the browser auth deadline as a duration.
func (c *Config) AuthTimeout() time.Duration {
	return time.Duration(c.AuthTimeoutSeconds) * time.Second
}

// NewDefaultConfig returns a new Config with default values.
func NewDefaultConfig(promptDir string) *Config {
	return &Config{
		APIBaseURL:          "https://api.puter.com",
		GUIOrigin:           "https://puter.com",
		Token:               "$PUTER_AUTH_TOKEN", // Default to env var
		Model:               "gpt-5-nano",
		AllowTempGuest:      false,
		TempGuestPerRequest: false,
		AuthTimeoutSeconds:  180,
		CallbackPort:        8969,
		PromptDirs:          []string{promptDir},
	}
}

// LoadConfig loads configuration from viper.
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// Expand $VAR / ${VAR} references in the token value
	token, err := expandEnvVar(config.Token)
	if err != nil {
		return nil, fmt.Errorf("error expanding token value: %v", err)
	}
	config.Token = token

	// Convert prompt directories to absolute paths
	for i, promptDir := range config.PromptDirs {
		absPath, err := ResolvePath(promptDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving prompt directory path '%s': %v", promptDir, err)
		}
		config.PromptDirs[i] = absPath
	}

	return config, nil
}
