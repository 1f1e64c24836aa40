package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"emergencyreport/internal/domain/entity"
)

const submittedAtLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrNothingToExport = errors.New("No reports to export")

var csvHeader = []string{"ID", "Event Type", "Description", "Reporter Email", "Latitude", "Longitude", "Event Date", "Submitted At"}

type Stats struct {
	Total    int `json:"total"`
	Today    int `json:"today"`
	ThisWeek int `json:"thisWeek"`
}

type ReportFilter struct {
	EventType string
	Search    string
}

func (f ReportFilter) IsZero() bool {
	return f.EventType == "" && f.Search == ""
}

// ComputeStats counts reports submitted on now's calendar date and those
// submitted no earlier than seven days before the start of that date.
func ComputeStats(reports []*entity.Report, now time.Time) Stats {
	loc := now.Location()
	y, m, d := now.Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, loc)
	weekAgo := startOfToday.Add(-7 * 24 * time.Hour)

	stats := Stats{Total: len(reports)}
	for _, r := range reports {
		at := r.SubmittedAt.In(loc)
		ry, rm, rd := at.Date()
		if ry == y && rm == m && rd == d {
			stats.Today++
		}
		if !at.Before(weekAgo) {
			stats.ThisWeek++
		}
	}
	return stats
}

// Filter returns the reports matching f in their original order.
func Filter(reports []*entity.Report, f ReportFilter) []*entity.Report {
	search := strings.ToLower(f.Search)
	out := make([]*entity.Report, 0, len(reports))
	for _, r := range reports {
		if f.EventType != "" && string(r.EventType) != f.EventType {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Description), search) &&
			!strings.Contains(strings.ToLower(r.ReporterEmail), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortBySubmittedDesc orders reports newest first, keeping ties in place.
func SortBySubmittedDesc(reports []*entity.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].SubmittedAt.After(reports[j].SubmittedAt)
	})
}

// ExportCSV writes reports with every field quoted and rows separated by a
// bare newline. Nothing is written for an empty slice.
func ExportCSV(w io.Writer, reports []*entity.Report) error {
	if len(reports) == 0 {
		return ErrNothingToExport
	}

	var b strings.Builder
	writeCSVRow(&b, csvHeader)
	for _, r := range reports {
		b.WriteByte('\n')
		writeCSVRow(&b, []string{
			r.ID,
			string(r.EventType),
			r.Description,
			r.ReporterEmail,
			strconv.FormatFloat(r.Location.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Location.Longitude, 'f', -1, 64),
			r.Datetime,
			r.SubmittedAt.UTC().Format(submittedAtLayout),
		})
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
}

// ReportFetcher loads the full report list for a dashboard.
type ReportFetcher interface {
	FetchAll(ctx context.Context) ([]*entity.Report, error)
}

// DashboardSession is one viewer's loaded reports and current filter.
type DashboardSession struct {
	fetcher  ReportFetcher
	all      []*entity.Report
	filter   ReportFilter
	filtered []*entity.Report
}

func NewDashboardSession(fetcher ReportFetcher) *DashboardSession {
	return &DashboardSession{fetcher: fetcher}
}

// Load replaces the session's reports. On error the previous state is kept.
func (s *DashboardSession) Load(ctx context.Context) error {
	reports, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return err
	}
	SortBySubmittedDesc(reports)
	s.all = reports
	s.filtered = Filter(s.all, s.filter)
	return nil
}

func (s *DashboardSession) ApplyFilter(f ReportFilter) []*entity.Report {
	s.filter = f
	s.filtered = Filter(s.all, f)
	return s.filtered
}

// Stats always covers every loaded report, regardless of the filter.
func (s *DashboardSession) Stats(now time.Time) Stats {
	return ComputeStats(s.all, now)
}

func (s *DashboardSession) All() []*entity.Report {
	return s.all
}

func (s *DashboardSession) Filtered() []*entity.Report {
	return s.filtered
}

func (s *DashboardSession) Export(w io.Writer) error {
	return ExportCSV(w, s.filtered)
}
