package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/config"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
)

func validConfig() *config.Config {
	return &config.Config{
		Audit: config.AuditConfig{
			Dir: "/var/lib/perf-auditor/results",
			Sites: []domain.Site{
				{ID: 1, Name: "Example", URLs: []string{"https://example.com"}},
			},
		},
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()

	assert.Equal(t, "perf-auditor", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, []string{domain.DeviceDesktop, domain.DeviceMobile}, cfg.Audit.Devices)
	assert.Equal(t, 3, cfg.Audit.Runs)
	assert.Equal(t, 1, cfg.Audit.Concurrency)
	assert.NotEmpty(t, cfg.Audit.Dir)
	assert.NotEmpty(t, cfg.Scheduler.Schedule)
	assert.Equal(t, "lighthouse", cfg.Engine.Binary)
}

func TestConfig_SetDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.Runs = 5
	cfg.Audit.Devices = []string{"mobile"}
	cfg.SetDefaults()

	assert.Equal(t, 5, cfg.Audit.Runs)
	assert.Equal(t, []string{"mobile"}, cfg.Audit.Devices)
	assert.Equal(t, "/var/lib/perf-auditor/results", cfg.Audit.Dir)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_RejectsBadSites(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.Sites[0].ID = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Audit.Sites[0].URLs = nil
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Audit.Sites = append(cfg.Audit.Sites, domain.Site{ID: 1, Name: "Dup", URLs: []string{"https://dup.com"}})
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RequiresAuditDir(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.Dir = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Site(t *testing.T) {
	cfg := validConfig()

	site, ok := cfg.Site(1)
	require.True(t, ok)
	assert.Equal(t, "Example", site.Name)

	_, ok = cfg.Site(99)
	assert.False(t, ok)
}
