// Package config provides YAML-based configuration loading for Turnkey.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Turnkey configuration, loaded from turnkey.yaml.
type Config struct {
	Owner     string          `yaml:"owner"`
	DB        DBConfig        `yaml:"db"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Alerts    AlertsConfig    `yaml:"alerts"`
}

// DBConfig holds connection settings for the MySQL server.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// DashboardConfig holds settings for the JSON dashboard server.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// AlertsConfig configures the low-stock digest and orphan-session sweeper.
// Channel selects the delivery adapter: none, slack or discord.
type AlertsConfig struct {
	Channel         string        `yaml:"channel"`
	DigestCron      string        `yaml:"digest_cron"`
	SessionTTLHours int           `yaml:"session_ttl_hours"`
	Slack           SlackConfig   `yaml:"slack"`
	Discord         DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack credentials for the alert adapter.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord credentials for the alert adapter.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.Database == "" && c.Owner != "" {
		c.DB.Database = "turnkey_" + c.Owner
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8090
	}
	if c.Alerts.Channel == "" {
		c.Alerts.Channel = "none"
	}
	if c.Alerts.DigestCron == "" {
		c.Alerts.DigestCron = "0 8 * * *"
	}
	if c.Alerts.SessionTTLHours == 0 {
		c.Alerts.SessionTTLHours = 12
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Owner == "" {
		errs = append(errs, "owner is required")
	}
	switch c.Alerts.Channel {
	case "none":
	case "slack":
		if c.Alerts.Slack.BotToken == "" {
			errs = append(errs, "alerts.slack.bot_token is required when channel is slack")
		}
		if c.Alerts.Slack.Channel == "" {
			errs = append(errs, "alerts.slack.channel is required when channel is slack")
		}
	case "discord":
		if c.Alerts.Discord.Token == "" {
			errs = append(errs, "alerts.discord.token is required when channel is discord")
		}
		if c.Alerts.Discord.ChannelID == "" {
			errs = append(errs, "alerts.discord.channel_id is required when channel is discord")
		}
	default:
		errs = append(errs, fmt.Sprintf("alerts.channel %q is not one of none, slack, discord", c.Alerts.Channel))
	}
	if c.Alerts.SessionTTLHours < 0 {
		errs = append(errs, "alerts.session_ttl_hours must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
