package database_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/database"
)

func TestRunLogRepository_HasRunToday(t *testing.T) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	db := sqlx.NewDb(mockDB, "postgres")
	repo := database.NewRunLogRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ran, err := repo.HasRunToday(ctx, 1)
	if err != nil {
		t.Fatalf("HasRunToday() error = %v", err)
	}
	if !ran {
		t.Error("expected true for a site with a run today")
	}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ran, err = repo.HasRunToday(ctx, 2)
	if err != nil {
		t.Fatalf("HasRunToday() error = %v", err)
	}
	if ran {
		t.Error("expected false for a site without a run today")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRunLogRepository_MarkRun(t *testing.T) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	db := sqlx.NewDb(mockDB, "postgres")
	repo := database.NewRunLogRepository(db)

	mock.ExpectExec("INSERT INTO audit_runs").
		WithArgs(sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkRun(context.Background(), 3); err != nil {
		t.Fatalf("MarkRun() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
