package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/gclog-analysis/pkg/errors"
	"github.com/gclog-analysis/pkg/model"
)

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// AutoMigrate creates or updates the run history schema.
func (r *GormRunRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&AnalysisRun{})
}

// SaveRun persists a finalized report and returns the run ID.
func (r *GormRunRepository) SaveRun(ctx context.Context, rep *model.Report) (int64, error) {
	run, err := FromReport(rep)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to encode report", err)
	}

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to save run", err)
	}

	return run.ID, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (r *GormRunRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	var rows []AnalysisRun

	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to list runs", err)
	}

	runs := make([]*Run, 0, len(rows))
	for i := range rows {
		run, err := rows[i].ToRun()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDatabaseError,
				fmt.Sprintf("failed to decode run %d", rows[i].ID), err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// GetRun retrieves a run by its ID.
func (r *GormRunRepository) GetRun(ctx context.Context, id int64) (*Run, error) {
	var row AnalysisRun

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("run not found: %d", id))
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to get run", err)
	}

	return row.ToRun()
}

// DeleteRun removes a run by its ID.
func (r *GormRunRepository) DeleteRun(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&AnalysisRun{}, id)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to delete run", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("run not found: %d", id))
	}

	return nil
}

var _ RunRepository = (*GormRunRepository)(nil)
