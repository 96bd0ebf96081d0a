package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gclog-analysis/pkg/model"
)

// setupMockDB wires sqlmock under the postgres dialector so SQL issued by
// the repository can be asserted without a live server.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormRunRepository_SaveRun_SQL(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewGormRunRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "gclog_analysis_runs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	id, err := repo.SaveRun(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRunRepository_ListRuns_SQL(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewGormRunRepository(gormDB)

	rows := sqlmock.NewRows([]string{
		"id", "source", "region_size", "total_allocations", "buckets", "percentiles",
	}).AddRow(
		int64(2), "gc.log", int64(16*model.MB), int64(3),
		[]byte(`[{"region_size":"16MB","max_allocation_size":16777216,"num_allocations":3}]`),
		[]byte(`{"min":1,"p50":2,"p75":3,"p90":4,"p99":5,"max":6}`),
	)

	mock.ExpectQuery(`SELECT \* FROM "gclog_analysis_runs" ORDER BY id DESC LIMIT`).
		WillReturnRows(rows)

	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(2), runs[0].ID)
	assert.Equal(t, "gc.log", runs[0].Report.Source)
	require.Len(t, runs[0].Report.Buckets, 1)
	assert.Equal(t, int64(3), runs[0].Report.Buckets[0].Count)
	assert.Equal(t, uint64(2), runs[0].Report.Percentiles.P50)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRunRepository_DeleteRun_SQL(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewGormRunRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "gclog_analysis_runs"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteRun(context.Background(), 2)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
