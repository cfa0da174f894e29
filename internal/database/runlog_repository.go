package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RunLogRepository records completed pipeline runs per site and day.
// The scheduler consults it so a site's matrix never executes twice on
// the same day; the core pipeline itself carries no such guard.
type RunLogRepository struct {
	db *sqlx.DB
}

// NewRunLogRepository creates a new run log repository.
func NewRunLogRepository(db *sqlx.DB) *RunLogRepository {
	return &RunLogRepository{db: db}
}

// HasRunToday reports whether the site's pipeline already completed
// today.
func (r *RunLogRepository) HasRunToday(ctx context.Context, siteID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM audit_runs
			WHERE idsite = $1 AND ran_on = CURRENT_DATE
		)
	`

	var ran bool
	if err := r.db.GetContext(ctx, &ran, query, siteID); err != nil {
		return false, fmt.Errorf("failed to check run log: %w", err)
	}

	return ran, nil
}

// MarkRun records a completed run for the site.
func (r *RunLogRepository) MarkRun(ctx context.Context, siteID int64) error {
	query := `
		INSERT INTO audit_runs (id, idsite, ran_on)
		VALUES ($1, $2, CURRENT_DATE)
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), siteID); err != nil {
		return fmt.Errorf("failed to mark run: %w", err)
	}

	return nil
}
