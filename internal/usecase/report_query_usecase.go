package usecase

import (
	"context"
	"io"
	"time"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/repository"
	"emergencyreport/internal/infrastructure/metrics"
	"emergencyreport/pkg/errors"
)

const FetchFailedMessage = "Failed to fetch reports"

type ReportQueryUseCase struct {
	reportRepo repository.ReportRepository
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewReportQueryUseCase(reportRepo repository.ReportRepository, m *metrics.Metrics) *ReportQueryUseCase {
	return &ReportQueryUseCase{
		reportRepo: reportRepo,
		metrics:    m,
		now:        time.Now,
	}
}

// ListReports returns stored reports newest first, narrowed by filter.
func (uc *ReportQueryUseCase) ListReports(ctx context.Context, filter ReportFilter) ([]*entity.Report, error) {
	reports, err := uc.reportRepo.ListAll(ctx)
	uc.metrics.Listing(err)
	if err != nil {
		if errors.Is(err, errors.CodeStorage) {
			return nil, err
		}
		return nil, errors.Storage(FetchFailedMessage, err)
	}

	SortBySubmittedDesc(reports)
	if filter.IsZero() {
		return reports, nil
	}
	return Filter(reports, filter), nil
}

func (uc *ReportQueryUseCase) Stats(ctx context.Context) (Stats, error) {
	reports, err := uc.ListReports(ctx, ReportFilter{})
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(reports, uc.now()), nil
}

// Export writes the filtered reports as CSV. It returns ErrNothingToExport
// without writing when nothing matches.
func (uc *ReportQueryUseCase) Export(ctx context.Context, w io.Writer, filter ReportFilter) error {
	reports, err := uc.ListReports(ctx, filter)
	if err != nil {
		return err
	}
	return ExportCSV(w, reports)
}

