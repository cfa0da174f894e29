// Package config loads and validates the service configuration from
// file, environment and defaults via viper.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/database"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/engine"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/scheduler"
)

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// AuditConfig shapes the audit matrix and the result file store.
type AuditConfig struct {
	// Dir is the directory raw result files are written to.
	Dir string `mapstructure:"dir"`
	// Devices are the emulated device labels audited per URL.
	Devices []string `mapstructure:"devices"`
	// Runs is how many times each (url, device) pair is measured.
	Runs int `mapstructure:"runs"`
	// Concurrency bounds parallel engine invocations.
	Concurrency int `mapstructure:"concurrency"`
	// Metrics is the recognized metric whitelist.
	Metrics []string `mapstructure:"metrics"`
	// Sites are the audited sites and their page URLs.
	Sites []domain.Site `mapstructure:"sites"`
}

// Config is the root service configuration.
type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Logger    logger.Config    `mapstructure:"logger"`
	Database  database.Config  `mapstructure:"database"`
	Audit     AuditConfig      `mapstructure:"audit"`
	Engine    engine.Config    `mapstructure:"engine"`
	Scheduler scheduler.Config `mapstructure:"scheduler"`
}

// Load unmarshals the effective viper state into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults applies default values to all sections.
func (c *Config) SetDefaults() {
	if c.App.Name == "" {
		c.App.Name = "perf-auditor"
	}
	if c.App.Environment == "" {
		c.App.Environment = "production"
	}

	c.Logger.SetDefaults()
	c.Engine.SetDefaults()
	c.Scheduler.SetDefaults()

	if c.Audit.Dir == "" {
		c.Audit.Dir = "./audit-results"
	}
	if len(c.Audit.Devices) == 0 {
		c.Audit.Devices = []string{domain.DeviceDesktop, domain.DeviceMobile}
	}
	if c.Audit.Runs < 1 {
		c.Audit.Runs = 3
	}
	if c.Audit.Concurrency < 1 {
		c.Audit.Concurrency = 1
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Audit.Dir == "" {
		return errors.New("audit.dir is required")
	}

	seen := make(map[int64]bool, len(c.Audit.Sites))
	for _, site := range c.Audit.Sites {
		if site.ID <= 0 {
			return fmt.Errorf("site %q: id must be positive", site.Name)
		}
		if seen[site.ID] {
			return fmt.Errorf("site id %d configured twice", site.ID)
		}
		seen[site.ID] = true

		if len(site.URLs) == 0 {
			return fmt.Errorf("site %d: at least one url is required", site.ID)
		}
	}

	return nil
}

// Site returns the configured site with the given id.
func (c *Config) Site(id int64) (domain.Site, bool) {
	for _, site := range c.Audit.Sites {
		if site.ID == id {
			return site, true
		}
	}
	return domain.Site{}, false
}
