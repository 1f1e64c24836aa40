package service

import (
	"context"

	"emergencyreport/internal/domain/entity"
)

type AttachedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Notifier delivers report summaries by email.
type Notifier interface {
	NotifyReporter(ctx context.Context, report *entity.Report) error
	NotifyMinistry(ctx context.Context, report *entity.Report, image *AttachedImage) error
}

// ReportPublisher pushes newly stored reports to live dashboard viewers.
type ReportPublisher interface {
	PublishReport(report *entity.Report)
}
