// Package config loads the YAML configuration file and applies the
// environment overrides used for mail credentials and the public site URL.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/stagedoor/london-acting-events/internal/manual"
	"github.com/stagedoor/london-acting-events/internal/scraper"
)

const (
	DefaultTimezone = "Europe/London"
	DefaultSchedule = "0 0 * * *"
	DefaultSiteURL  = "https://your-site.netlify.app"
	DefaultSMTPPort = 587
)

// SMTPConfig holds mail server credentials.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// EmailConfig controls the new-events digest.
type EmailConfig struct {
	Enabled bool       `yaml:"enabled"`
	From    string     `yaml:"from"`
	To      []string   `yaml:"to"`
	SMTP    SMTPConfig `yaml:"smtp"`
}

// ProviderConfig describes one listing site.
type ProviderConfig struct {
	// Name labels the provider's events.
	Name string `yaml:"name"`
	// Strategy is a registered extraction strategy ("jsonld", "listing").
	Strategy string `yaml:"strategy"`
	// Render loads pages in headless Chrome instead of a plain GET.
	Render    bool              `yaml:"render"`
	Selectors scraper.Selectors `yaml:"selectors,omitempty"`
	URLs      []string          `yaml:"urls"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone for times published without an offset.
	Timezone string `yaml:"timezone"`
	// Schedule is the cron expression used by serve.
	Schedule string `yaml:"schedule"`
	// SiteURL is where the output directory is published.
	SiteURL string `yaml:"site_url"`

	// ManualFile is a YAML list of curated events; empty uses the built-in list.
	ManualFile    string        `yaml:"manual_file"`
	ManualHorizon time.Duration `yaml:"manual_horizon"`

	UserAgent    string        `yaml:"user_agent"`
	RequestDelay time.Duration `yaml:"request_delay"`
	ChromePath   string        `yaml:"chrome_path"`

	// MetricsListen, if set, serves /metrics while running serve.
	MetricsListen string `yaml:"metrics_listen"`

	Providers []ProviderConfig `yaml:"providers"`
	Email     EmailConfig      `yaml:"email"`
}

// DefaultProviders are used when the config lists none.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Name:     "Eventbrite",
			Strategy: scraper.StrategyJSONLD,
			URLs: []string{
				"https://www.eventbrite.co.uk/d/united-kingdom--london/acting/",
				"https://www.eventbrite.co.uk/d/united-kingdom--london/theatre-workshop/",
				"https://www.eventbrite.co.uk/d/united-kingdom--london/casting/",
			},
		},
		{
			Name:     "Meetup",
			Strategy: scraper.StrategyListing,
			URLs: []string{
				"https://www.meetup.com/find/?keywords=acting&location=gb--17--london",
				"https://www.meetup.com/find/?keywords=theatre&location=gb--17--london",
			},
		},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.SiteURL == "" {
		c.SiteURL = DefaultSiteURL
	}
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
	if c.ManualHorizon <= 0 {
		c.ManualHorizon = manual.DefaultHorizon
	}
	if c.UserAgent == "" {
		c.UserAgent = scraper.UserAgent
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = scraper.DefaultDelay
	}
	if len(c.Providers) == 0 {
		c.Providers = DefaultProviders()
	}
	for i := range c.Providers {
		if c.Providers[i].Strategy == "" {
			c.Providers[i].Strategy = scraper.StrategyJSONLD
		}
	}
	if c.Email.SMTP.Port == 0 {
		c.Email.SMTP.Port = DefaultSMTPPort
	}
}

// ApplyEnv overrides settings from the environment, read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("URL"); v != "" {
		c.SiteURL = strings.TrimRight(v, "/")
	}
	if v := getenv("SMTP_HOST"); v != "" {
		c.Email.SMTP.Host = v
	}
	if v := getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing SMTP_PORT: %w", err)
		}
		c.Email.SMTP.Port = port
	}
	if v := getenv("SMTP_USER"); v != "" {
		c.Email.SMTP.Username = v
	}
	if v := getenv("SMTP_PASS"); v != "" {
		c.Email.SMTP.Password = v
	}
	if v := getenv("EMAIL_FROM"); v != "" {
		c.Email.From = v
	}
	if v := getenv("EMAIL_TO"); v != "" {
		c.Email.To = splitList(v)
	}
	if v := getenv("ENABLE_EMAIL"); v != "" {
		c.Email.Enabled = v == "true"
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule %q: %w", c.Schedule, err))
	}

	strategies := scraper.Strategies()
	names := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("provider %d: missing name", i+1))
		} else if names[p.Name] {
			errs = append(errs, fmt.Errorf("provider %q: duplicate name", p.Name))
		}
		names[p.Name] = true

		if !slices.Contains(strategies, p.Strategy) {
			errs = append(errs, fmt.Errorf("provider %q: unknown strategy %q", p.Name, p.Strategy))
		}
		if len(p.URLs) == 0 {
			errs = append(errs, fmt.Errorf("provider %q: no urls", p.Name))
		}
	}

	if c.Email.Enabled {
		if c.Email.SMTP.Host == "" {
			errs = append(errs, errors.New("email: smtp host is required"))
		}
		if c.Email.From == "" {
			errs = append(errs, errors.New("email: from is required"))
		}
		if len(c.Email.To) == 0 {
			errs = append(errs, errors.New("email: at least one recipient is required"))
		}
	}

	return errors.Join(errs...)
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

// FeedURL is the public address of the calendar file.
func (c *Config) FeedURL() string {
	return c.SiteURL + "/calendar.ics"
}

// Load reads the YAML file at path. A missing file or an empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
