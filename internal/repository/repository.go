// Package repository persists analysis run history.
package repository

import (
	"context"

	"github.com/gclog-analysis/pkg/model"
)

// Run pairs a persisted run ID and timestamp with its report.
type Run struct {
	ID        int64
	CreatedAt string
	Report    *model.Report
}

// RunRepository defines the interface for run history operations.
type RunRepository interface {
	// SaveRun persists a finalized report and returns the run ID.
	SaveRun(ctx context.Context, rep *model.Report) (int64, error)

	// ListRuns retrieves the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// GetRun retrieves a run by its ID.
	GetRun(ctx context.Context, id int64) (*Run, error)

	// DeleteRun removes a run by its ID.
	DeleteRun(ctx context.Context, id int64) error
}
