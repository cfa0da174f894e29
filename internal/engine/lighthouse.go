package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
)

// DefaultAuditTimeout bounds one engine invocation. Cold Chrome starts
// and slow pages make aggressive values counterproductive.
const DefaultAuditTimeout = 2 * time.Minute

// Config holds the Lighthouse invocation settings.
type Config struct {
	// Binary is the lighthouse executable name or path.
	Binary string `mapstructure:"binary"`
	// ChromeFlags are passed through to the controlled Chrome instance.
	ChromeFlags string `mapstructure:"chrome_flags"`
	// Timeout bounds a single audit invocation.
	Timeout time.Duration `mapstructure:"timeout"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Binary == "" {
		c.Binary = "lighthouse"
	}
	if c.ChromeFlags == "" {
		c.ChromeFlags = "--headless --no-sandbox"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultAuditTimeout
	}
}

// Lighthouse invokes the lighthouse CLI as the audit engine.
type Lighthouse struct {
	config Config
	logger logger.Logger
}

// NewLighthouse creates a Lighthouse engine. The binary must be
// resolvable in PATH unless configured with an absolute path.
func NewLighthouse(cfg Config, log logger.Logger) (*Lighthouse, error) {
	cfg.SetDefaults()

	path, err := exec.LookPath(cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("lighthouse binary %q not found: %w", cfg.Binary, err)
	}
	cfg.Binary = path

	return &Lighthouse{config: cfg, logger: log}, nil
}

// Audit implements Engine by shelling out to the lighthouse CLI with
// JSON output written directly to outputPath.
func (l *Lighthouse) Audit(ctx context.Context, url, device, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	args := []string{
		url,
		"--output=json",
		"--output-path=" + outputPath,
		"--quiet",
		"--chrome-flags=" + l.config.ChromeFlags,
	}
	// Lighthouse emulates mobile by default; desktop needs the preset.
	if device == domain.DeviceDesktop {
		args = append(args, "--preset=desktop")
	}

	cmd := exec.CommandContext(ctx, l.config.Binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return auditError(url, device, fmt.Sprintf("timed out after %v", l.config.Timeout))
		}
		return auditError(url, device, stderr.String())
	}

	l.logger.Debug("audit completed",
		logger.String("url", url),
		logger.String("device", device),
		logger.Duration("elapsed", time.Since(start)),
	)

	return nil
}
