package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
)

func TestReportRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	reporter := createUser(t, db, "a@csu.fullerton.edu")
	target := createUser(t, db, "b@csu.fullerton.edu")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Report{
			ReporterID:   reporter.ID,
			TargetUserID: &target.ID,
			Reason:       domain.ReportReasonSpam,
			Status:       domain.ReportStatusOpen,
		}))
	}

	mine, total, err := repo.ListByReporter(ctx, reporter.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, mine, 2)

	resolved := domain.ReportStatusResolved
	_, total, err = repo.List(ctx, &resolved, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	all, total, err := repo.List(ctx, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 1, all[0].TargetCount())
}
