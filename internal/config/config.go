// ABOUTME: YAML configuration for the stillwave client
// ABOUTME: Defaults, file loading, env API key, and validation
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIKeyEnv        string `yaml:"api_key_env"`
	Mock             bool   `yaml:"mock"`
	VideoPollSeconds int    `yaml:"video_poll_seconds"`
	VideoPollMax     int    `yaml:"video_poll_max"`
}

type LiveConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	Discover   bool   `yaml:"discover"`
}

type CaptureConfig struct {
	Command    string `yaml:"command"`
	SampleRate int    `yaml:"sample_rate"`
}

type PlaybackConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

type DefaultsConfig struct {
	Theme string `yaml:"theme"`
	Voice string `yaml:"voice"`
}

type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Live     LiveConfig     `yaml:"live"`
	Capture  CaptureConfig  `yaml:"capture"`
	Playback PlaybackConfig `yaml:"playback"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL:          "https://api.stillwave.audio",
			APIKeyEnv:        "STILLWAVE_API_KEY",
			VideoPollSeconds: 5,
			VideoPollMax:     60,
		},
		Live: LiveConfig{
			Discover: true,
		},
		Capture: CaptureConfig{
			Command:    "arecord -q -f S16_LE -r 16000 -c 1 -t raw",
			SampleRate: 16000,
		},
		Playback: PlaybackConfig{
			SampleRate: 24000,
			Channels:   1,
		},
		Defaults: DefaultsConfig{
			Theme: "Ocean",
			Voice: "Kore",
		},
	}
}

// Load reads configuration from path, applying it over the defaults.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Capture.SampleRate <= 0 {
		return fmt.Errorf("capture sample_rate must be positive")
	}
	if c.Playback.SampleRate <= 0 {
		return fmt.Errorf("playback sample_rate must be positive")
	}
	if c.Playback.Channels <= 0 {
		return fmt.Errorf("playback channels must be positive")
	}
	if !c.Provider.Mock && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base_url is required unless mock is enabled")
	}
	if c.Provider.VideoPollMax <= 0 {
		return fmt.Errorf("provider video_poll_max must be positive")
	}
	return nil
}

// APIKey resolves the provider API key from the environment.
func (c *Config) APIKey() string {
	if c.Provider.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Provider.APIKeyEnv)
}
