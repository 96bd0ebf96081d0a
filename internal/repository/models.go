package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/gclog-analysis/pkg/model"
)

// AnalysisRun represents the gclog_analysis_runs table.
type AnalysisRun struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Source           string    `gorm:"column:source;type:varchar(512)"`
	RegionSize       uint64    `gorm:"column:region_size"`
	TotalAllocations int64     `gorm:"column:total_allocations"`
	Buckets          JSONField `gorm:"column:buckets;type:json"`
	Percentiles      JSONField `gorm:"column:percentiles;type:json"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for AnalysisRun.
func (AnalysisRun) TableName() string {
	return "gclog_analysis_runs"
}

// FromReport builds an AnalysisRun row from a finalized report.
func FromReport(rep *model.Report) (*AnalysisRun, error) {
	run := &AnalysisRun{
		Source:           rep.Source,
		RegionSize:       rep.RegionSize,
		TotalAllocations: rep.TotalAllocations,
	}

	if rep.Buckets != nil {
		data, err := json.Marshal(rep.Buckets)
		if err != nil {
			return nil, err
		}
		run.Buckets = data
	}

	if rep.Percentiles != nil {
		data, err := json.Marshal(rep.Percentiles)
		if err != nil {
			return nil, err
		}
		run.Percentiles = data
	}

	return run, nil
}

// ToRun converts an AnalysisRun row back to a Run with its report.
func (a *AnalysisRun) ToRun() (*Run, error) {
	rep := &model.Report{
		Source:           a.Source,
		RegionSize:       a.RegionSize,
		TotalAllocations: a.TotalAllocations,
	}

	if a.Buckets != nil {
		if err := json.Unmarshal(a.Buckets, &rep.Buckets); err != nil {
			return nil, err
		}
	}

	if a.Percentiles != nil {
		rep.Percentiles = &model.PercentileSnapshot{}
		if err := json.Unmarshal(a.Percentiles, rep.Percentiles); err != nil {
			return nil, err
		}
	}

	return &Run{
		ID:        a.ID,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		Report:    rep,
	}, nil
}

// JSONField is a custom type for handling JSON columns in GORM.
type JSONField []byte

// Value implements driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler interface.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}
