package repository

import (
	"context"

	"emergencyreport/internal/domain/entity"
)

// ReportRepository persists reports. Records are append-only: there is no
// update or delete path.
type ReportRepository interface {
	// Save stores a new report and returns the id derived from its creation time.
	Save(ctx context.Context, report *entity.Report) (string, error)
	// ListAll returns every stored report with its id set. Records that cannot
	// be decoded are skipped. Order is unspecified.
	ListAll(ctx context.Context) ([]*entity.Report, error)
}
