package notification

import (
	"context"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/service"
	"emergencyreport/pkg/logger"
)

// LogNotifier renders messages and writes them to the log instead of sending.
type LogNotifier struct {
	ministryEmail string
}

var _ service.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(ministryEmail string) *LogNotifier {
	return &LogNotifier{ministryEmail: ministryEmail}
}

func (n *LogNotifier) NotifyReporter(ctx context.Context, report *entity.Report) error {
	msg := ReporterConfirmation(report)
	logger.Info("Email (not sent) to=%s subject=%q", msg.To, msg.Subject)
	return nil
}

func (n *LogNotifier) NotifyMinistry(ctx context.Context, report *entity.Report, image *service.AttachedImage) error {
	msg := MinistryAlert(n.ministryEmail, report)
	attached := 0
	if image != nil {
		attached = len(image.Data)
	}
	logger.Info("Email (not sent) to=%s subject=%q attachment_bytes=%d", msg.To, msg.Subject, attached)
	return nil
}
