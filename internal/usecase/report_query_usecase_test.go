package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergencyreport/internal/adapter/repository"
	"emergencyreport/internal/domain/entity"
)

func reportIDs(reports []*entity.Report) []string {
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestListReportsIsRepeatable(t *testing.T) {
	repo := repository.NewFileReportRepository(filepath.Join(t.TempDir(), "reports"))
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, r := range []*entity.Report{
		{EventType: entity.EventFlood, Description: "River overflow", Datetime: "2024-03-01T09:30", ReporterEmail: "a@b.lk", SubmittedAt: base},
		{EventType: entity.EventFlood, Description: "Bridge closed", Datetime: "2024-03-01T09:35", ReporterEmail: "c@b.lk", SubmittedAt: base},
		{EventType: entity.EventEarthquake, Description: "Shaking", Datetime: "2024-03-01T10:30", ReporterEmail: "b@b.lk", SubmittedAt: base.Add(time.Hour)},
		{EventType: entity.EventWildfire, Description: "Smoke on the ridge", Datetime: "2024-02-28T18:00", ReporterEmail: "d@b.lk", SubmittedAt: base.Add(-48 * time.Hour)},
	} {
		_, err := repo.Save(context.Background(), r)
		require.NoError(t, err)
	}

	uc := NewReportQueryUseCase(repo, nil)

	first, err := uc.ListReports(context.Background(), ReportFilter{})
	require.NoError(t, err)
	second, err := uc.ListReports(context.Background(), ReportFilter{})
	require.NoError(t, err)

	require.Len(t, first, 4)
	assert.Equal(t, reportIDs(first), reportIDs(second))
	assert.Equal(t, "Shaking", first[0].Description)
	assert.Equal(t, "Smoke on the ridge", first[3].Description)

	filtered, err := uc.ListReports(context.Background(), ReportFilter{EventType: "flood"})
	require.NoError(t, err)
	again, err := uc.ListReports(context.Background(), ReportFilter{EventType: "flood"})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
	assert.Equal(t, reportIDs(filtered), reportIDs(again))
}
