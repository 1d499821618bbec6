package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEventsEndpoint is the PagerDuty Events API v2 base URL.
const DefaultEventsEndpoint = "https://events.pagerduty.com"

// Config represents the optional handler configuration file.
type Config struct {
	PagerDuty   PagerDutyConfig   `yaml:"pagerduty"`
	Log         LogConfig         `yaml:"log"`
	Pushgateway PushgatewayConfig `yaml:"pushgateway"`
}

// PagerDutyConfig contains Events API settings.
type PagerDutyConfig struct {
	EventsEndpoint string        `yaml:"events_endpoint"` // default: https://events.pagerduty.com
	Timeout        time.Duration `yaml:"timeout"`         // HTTP timeout (default: 30s)
	Severity       string        `yaml:"severity"`        // critical, error, warning, info (default: critical)
	Client         string        `yaml:"client"`          // monitoring client name (default: sensu)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // console or json (default: console)
}

// PushgatewayConfig enables pushing handler metrics after each run.
type PushgatewayConfig struct {
	URL string `yaml:"url"` // empty disables pushing
	Job string `yaml:"job"` // default: sensu_pagerduty_handler
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.PagerDuty.EventsEndpoint == "" {
		c.PagerDuty.EventsEndpoint = DefaultEventsEndpoint
	}
	if c.PagerDuty.Timeout <= 0 {
		c.PagerDuty.Timeout = 30 * time.Second
	}
	if c.PagerDuty.Severity == "" {
		c.PagerDuty.Severity = "critical"
	}
	if c.PagerDuty.Client == "" {
		c.PagerDuty.Client = "sensu"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Pushgateway.Job == "" {
		c.Pushgateway.Job = "sensu_pagerduty_handler"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.PagerDuty.Severity {
	case "critical", "error", "warning", "info":
	default:
		return fmt.Errorf("pagerduty.severity must be one of critical, error, warning, info")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}
	if c.Pushgateway.URL != "" {
		u, err := url.Parse(c.Pushgateway.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("pushgateway.url must be an absolute URL")
		}
	}
	return nil
}
