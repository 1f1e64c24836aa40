package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergencyreport/internal/domain/entity"
)

func report(id string, eventType entity.EventType, description, email string, submittedAt time.Time) *entity.Report {
	return &entity.Report{
		ID:            id,
		EventType:     eventType,
		Description:   description,
		Location:      entity.Location{Latitude: 6.9271, Longitude: 79.8612},
		Datetime:      "2024-03-01T09:30",
		ReporterEmail: email,
		SubmittedAt:   submittedAt,
	}
}

func ids(reports []*entity.Report) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func TestComputeStatsWindows(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, loc)
	midnight := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	reports := []*entity.Report{
		report("1", entity.EventFlood, "a", "a@x", now.Add(-time.Hour)),
		report("2", entity.EventFlood, "b", "b@x", midnight),
		report("3", entity.EventFlood, "c", "c@x", midnight.Add(-time.Second)),
		report("4", entity.EventFlood, "d", "d@x", midnight.Add(-7*24*time.Hour)),
		report("5", entity.EventFlood, "e", "e@x", midnight.Add(-7*24*time.Hour-time.Second)),
	}

	stats := ComputeStats(reports, now)
	assert.Equal(t, Stats{Total: 5, Today: 2, ThisWeek: 4}, stats)
}

func TestComputeStatsUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, loc)
	// 20:00 UTC on the 9th is 01:30 on the 10th in IST.
	r := report("1", entity.EventFlood, "a", "a@x", time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC))

	assert.Equal(t, 1, ComputeStats([]*entity.Report{r}, now).Today)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil, time.Now()))
}

func TestFilter(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reports := []*entity.Report{
		report("1", entity.EventFlood, "River overflow near bridge", "a@b.lk", base),
		report("2", entity.EventWildfire, "Smoke near school", "fire@watch.lk", base),
		report("3", entity.EventFlood, "Street under water", "citizen@mail.lk", base),
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(reports, ReportFilter{})))
	assert.Equal(t, []string{"1", "3"}, ids(Filter(reports, ReportFilter{EventType: "flood"})))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(reports, ReportFilter{Search: "NEAR"})))
	assert.Equal(t, []string{"2"}, ids(Filter(reports, ReportFilter{Search: "watch"})))
	assert.Equal(t, []string{"1"}, ids(Filter(reports, ReportFilter{EventType: "flood", Search: "near"})))
	assert.Empty(t, Filter(reports, ReportFilter{EventType: "tsunami"}))
}

func TestFilterComposition(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reports := []*entity.Report{
		report("1", entity.EventFlood, "River overflow", "a@b.lk", base),
		report("2", entity.EventEarthquake, "Cracked river wall", "b@b.lk", base),
		report("3", entity.EventFlood, "Road blocked", "river@b.lk", base),
		report("4", entity.EventOther, "Nothing", "c@b.lk", base),
	}

	for _, eventType := range []string{"", "flood", "earthquake", "other"} {
		for _, search := range []string{"", "river", "B.LK", "zzz"} {
			both := Filter(reports, ReportFilter{EventType: eventType, Search: search})
			chained := Filter(Filter(reports, ReportFilter{EventType: eventType}), ReportFilter{Search: search})
			assert.Equal(t, ids(chained), ids(both), "type=%q search=%q", eventType, search)
		}
	}
}

func TestSortBySubmittedDescIsStable(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reports := []*entity.Report{
		report("old", entity.EventFlood, "a", "a@x", base),
		report("tie-1", entity.EventFlood, "b", "b@x", base.Add(time.Hour)),
		report("new", entity.EventFlood, "c", "c@x", base.Add(2*time.Hour)),
		report("tie-2", entity.EventFlood, "d", "d@x", base.Add(time.Hour)),
	}

	SortBySubmittedDesc(reports)
	assert.Equal(t, []string{"new", "tie-1", "tie-2", "old"}, ids(reports))
}

func TestExportCSV(t *testing.T) {
	submitted := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	reports := []*entity.Report{
		report("1709287200000", entity.EventFlood, `Water "knee deep", rising`, "a@b.lk", submitted),
		report("1709287200001", entity.EventOther, "Line one\nline two", `odd"mail@b.lk`, submitted),
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, reports))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `"ID","Event Type","Description","Reporter Email","Latitude","Longitude","Event Date","Submitted At"`+"\n"))
	assert.False(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, `"Water ""knee deep"", rising"`)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"1709287200000", "flood", `Water "knee deep", rising`, "a@b.lk",
		"6.9271", "79.8612", "2024-03-01T09:30", "2024-03-01T10:00:00.000Z",
	}, rows[1])
	assert.Equal(t, "Line one\nline two", rows[2][2])
	assert.Equal(t, `odd"mail@b.lk`, rows[2][3])
}

func TestExportCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := ExportCSV(&buf, nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

type stubFetcher struct {
	reports []*entity.Report
	err     error
}

func (s *stubFetcher) FetchAll(ctx context.Context) ([]*entity.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*entity.Report, len(s.reports))
	copy(out, s.reports)
	return out, nil
}

func TestDashboardSession(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{reports: []*entity.Report{
		report("1", entity.EventFlood, "River overflow", "a@b.lk", now.Add(-48*time.Hour)),
		report("2", entity.EventEarthquake, "Shaking", "b@b.lk", now.Add(-time.Hour)),
	}}

	session := NewDashboardSession(fetcher)
	require.NoError(t, session.Load(context.Background()))
	assert.Equal(t, []string{"2", "1"}, ids(session.Filtered()))

	filtered := session.ApplyFilter(ReportFilter{EventType: "flood"})
	assert.Equal(t, []string{"1"}, ids(filtered))
	assert.Equal(t, Stats{Total: 2, Today: 1, ThisWeek: 2}, session.Stats(now))

	var buf bytes.Buffer
	require.NoError(t, session.Export(&buf))
	assert.Contains(t, buf.String(), `"River overflow"`)
	assert.NotContains(t, buf.String(), "Shaking")

	session.ApplyFilter(ReportFilter{EventType: "tsunami"})
	assert.ErrorIs(t, session.Export(&buf), ErrNothingToExport)
}

func TestDashboardSessionLoadErrorKeepsState(t *testing.T) {
	now := time.Now()
	fetcher := &stubFetcher{reports: []*entity.Report{report("1", entity.EventFlood, "a", "a@x", now)}}
	session := NewDashboardSession(fetcher)
	require.NoError(t, session.Load(context.Background()))

	fetcher.err = stderrors.New("connection refused")
	assert.Error(t, session.Load(context.Background()))
	assert.Len(t, session.All(), 1)
}
