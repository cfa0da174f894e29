package runner

import (
	"errors"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
)

// Matrix describes one site's audit workload: every page URL is audited
// on every emulated device, repeated Runs times.
type Matrix struct {
	SiteID  int64
	URLs    []string
	Devices []string
	Runs    int
}

// Validate checks that the matrix expands to at least one job.
func (m Matrix) Validate() error {
	if m.SiteID <= 0 {
		return errors.New("matrix: site id is required")
	}
	if len(m.URLs) == 0 {
		return errors.New("matrix: at least one url is required")
	}
	if len(m.Devices) == 0 {
		return errors.New("matrix: at least one device is required")
	}
	if m.Runs < 1 {
		return errors.New("matrix: runs must be at least 1")
	}
	return nil
}

// Size returns the number of jobs the matrix expands to.
func (m Matrix) Size() int {
	return len(m.URLs) * len(m.Devices) * m.Runs
}

// Jobs expands the matrix into the full cartesian product in nested
// (url, device, run) order. Downstream aggregation is order-insensitive,
// so this order is informational only.
func (m Matrix) Jobs() []domain.AuditJob {
	jobs := make([]domain.AuditJob, 0, m.Size())
	for _, url := range m.URLs {
		for _, device := range m.Devices {
			for run := 1; run <= m.Runs; run++ {
				jobs = append(jobs, domain.AuditJob{
					SiteID: m.SiteID,
					URL:    url,
					Device: device,
					Run:    run,
				})
			}
		}
	}
	return jobs
}
