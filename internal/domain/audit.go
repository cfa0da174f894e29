// Package domain provides domain models shared across the audit service.
package domain

import "time"

// AuditJob is one unit of audit execution: a single page load measurement
// for one URL on one emulated device. Jobs are generated from the site
// matrix and are never persisted.
type AuditJob struct {
	// SiteID identifies the site the page belongs to.
	SiteID int64 `json:"site_id"`
	// URL is the page URL to audit.
	URL string `json:"url"`
	// Device is the emulated device label (e.g. "desktop", "mobile").
	Device string `json:"device"`
	// Run is the 1-based run index within the matrix.
	Run int `json:"run"`
}

// Site describes one audited site and its page URLs.
type Site struct {
	// ID is the host platform's site identifier.
	ID int64 `json:"id" mapstructure:"id"`
	// Name is an optional human-readable label.
	Name string `json:"name,omitempty" mapstructure:"name"`
	// URLs is the list of page URLs to audit.
	URLs []string `json:"urls" mapstructure:"urls"`
}

// MetricRow is one persisted statistics row: the min/median/max of a
// single metric for a (site, device, action) combination.
type MetricRow struct {
	SiteID    int64     `db:"idsite"`
	DeviceID  int64     `db:"emulated_device"`
	ActionID  int64     `db:"idaction"`
	Key       string    `db:"key"`
	Min       int64     `db:"min"`
	Median    int64     `db:"median"`
	Max       int64     `db:"max"`
	CreatedAt time.Time `db:"created_at"`
}
