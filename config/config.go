// Package config loads the dashboard configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete dashboard configuration
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Window  WindowConfig  `yaml:"window"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig points at the two collector-produced datasets. Each source is
// a filesystem path or an http(s) URL.
type DataConfig struct {
	ActivitySource string `yaml:"activity_source"`
	MembersSource  string `yaml:"members_source"`
}

// WindowConfig controls the trailing day-count selector
type WindowConfig struct {
	DefaultDays int   `yaml:"default_days"`
	Options     []int `yaml:"options"`
}

// UIConfig contains presentation settings
type UIConfig struct {
	Mode        string `yaml:"mode"` // auto, tview, plain
	EnableMouse bool   `yaml:"enable_mouse"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults so the dashboard runs with zero configuration against data/.
func Load(filename string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the zero-configuration setup.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Data.ActivitySource) == "" {
		c.Data.ActivitySource = "data/activity.json"
	}
	if strings.TrimSpace(c.Data.MembersSource) == "" {
		c.Data.MembersSource = "data/members.json"
	}
	if c.Window.DefaultDays <= 0 {
		c.Window.DefaultDays = 7
	}
	if len(c.Window.Options) == 0 {
		c.Window.Options = []int{1, 3, 7, 14, 31}
	}
	mode := strings.ToLower(strings.TrimSpace(c.UI.Mode))
	switch mode {
	case "tview", "plain", "auto":
		c.UI.Mode = mode
	default:
		c.UI.Mode = "auto"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
}

// WindowOptions returns the selector options, guaranteeing the default
// window is present so the UI always starts on a listed choice.
func (c *Config) WindowOptions() []int {
	options := make([]int, 0, len(c.Window.Options)+1)
	seen := false
	for _, days := range c.Window.Options {
		if days <= 0 {
			continue
		}
		if days == c.Window.DefaultDays {
			seen = true
		}
		options = append(options, days)
	}
	if !seen {
		options = append(options, c.Window.DefaultDays)
	}
	return options
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("Activity: %s\n", c.Data.ActivitySource)
	fmt.Printf("Members: %s\n", c.Data.MembersSource)
	fmt.Printf("Window: %dd default\n", c.Window.DefaultDays)
	if c.Logging.File != "" {
		fmt.Printf("Logging: %s (%s)\n", c.Logging.File, c.Logging.Level)
	}
}
