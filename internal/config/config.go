// Package config loads the engine configuration from the YAML file in the
// data directory. Values are expanded against the environment before parsing.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Update UpdateConfig `yaml:"update"`
}

// UpdateConfig holds the auto-update settings. It is the startup snapshot;
// the updater keeps its own mutable copy that the UI can change at runtime.
type UpdateConfig struct {
	ManifestURL        string `yaml:"manifest_url" json:"manifest_url"`
	CheckOnLaunch      bool   `yaml:"check_on_launch" json:"check_on_launch"`
	LaunchDelaySeconds int    `yaml:"launch_delay_seconds" json:"launch_delay_seconds"`
	CheckIntervalHours int    `yaml:"check_interval_hours" json:"check_interval_hours"`
	AutoDownload       bool   `yaml:"auto_download" json:"auto_download"`
	AutoInstall        bool   `yaml:"auto_install" json:"auto_install"`
	ShowNotifications  bool   `yaml:"show_notifications" json:"show_notifications"`
}

// Default returns the built-in configuration used when no file exists.
func Default() Config {
	var c Config
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 27831
	c.Update = DefaultUpdateConfig()
	return c
}

// DefaultUpdateConfig returns the documented update defaults: check on launch
// after 5s, background check every 6 hours, auto-download but require user
// confirmation before install.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		ManifestURL:        "https://releases.vibing2.app/latest.json",
		CheckOnLaunch:      true,
		LaunchDelaySeconds: 5,
		CheckIntervalHours: 6,
		AutoDownload:       true,
		AutoInstall:        false,
		ShowNotifications:  true,
	}
}

// Load reads the config file at path, falling back to defaults when the file
// is absent. A malformed file is an error so typos are not silently ignored.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes with environment variable
// expansion, layered over the defaults.
func LoadFromBytes(data []byte) (Config, error) {
	c := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}
