package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/repository"
	"emergencyreport/internal/domain/service"
	"emergencyreport/internal/infrastructure/metrics"
	"emergencyreport/pkg/errors"
	"emergencyreport/pkg/logger"
)

const (
	MissingFieldsMessage    = "Missing required fields"
	InvalidLocationMessage  = "Invalid latitude or longitude"
	InvalidFileTypeMessage  = "Invalid file type. Only image files are allowed."
	SubmittedMessage        = "Report submitted successfully. Confirmation email sent to your email address."
	DefaultMaxUploadBytes   = 10 * 1024 * 1024
	defaultNotifyTimeout    = 30 * time.Second
	recipientReporter       = "reporter"
	recipientMinistry       = "ministry"
	outcomeAccepted         = "accepted"
	outcomeInvalid          = "invalid"
	outcomeAttachmentReject = "attachment_rejected"
	outcomeStorageFailed    = "storage_failed"
)

// allowedImageTypes maps accepted upload content types to a fallback extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type SubmitReportInput struct {
	EventType   string      `validate:"required"`
	Description string      `validate:"required"`
	Latitude    string      `validate:"required"`
	Longitude   string      `validate:"required"`
	Datetime    string      `validate:"required"`
	Email       string      `validate:"required"`
	Attachment  *Attachment `validate:"-"`
}

type SubmitResult struct {
	ReportID string
	Message  string
	Report   *entity.Report
}

type SubmissionOptions struct {
	MaxUploadBytes int64
	NotifyTimeout  time.Duration
	Now            func() time.Time
}

// SubmissionUseCase validates, stores and announces new reports.
type SubmissionUseCase struct {
	reportRepo repository.ReportRepository
	imageStore service.ImageStore
	notifier   service.Notifier
	publisher  service.ReportPublisher
	metrics    *metrics.Metrics
	validate   *validator.Validate

	maxUploadBytes int64
	notifyTimeout  time.Duration
	now            func() time.Time

	inflight sync.WaitGroup
}

func NewSubmissionUseCase(
	reportRepo repository.ReportRepository,
	imageStore service.ImageStore,
	notifier service.Notifier,
	publisher service.ReportPublisher,
	m *metrics.Metrics,
	opts SubmissionOptions,
) *SubmissionUseCase {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SubmissionUseCase{
		reportRepo:     reportRepo,
		imageStore:     imageStore,
		notifier:       notifier,
		publisher:      publisher,
		metrics:        m,
		validate:       validator.New(),
		maxUploadBytes: opts.MaxUploadBytes,
		notifyTimeout:  opts.NotifyTimeout,
		now:            opts.Now,
	}
}

func (uc *SubmissionUseCase) MaxUploadBytes() int64 {
	return uc.maxUploadBytes
}

// FileTooLargeMessage is the client message for an oversized attachment.
func (uc *SubmissionUseCase) FileTooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB.", uc.maxUploadBytes/(1024*1024))
}

// Submit runs the pipeline. Nothing is persisted unless every check passes;
// notifications are sent after the call returns and never affect its result.
func (uc *SubmissionUseCase) Submit(ctx context.Context, input SubmitReportInput) (*SubmitResult, error) {
	if err := uc.validate.Struct(input); err != nil {
		uc.metrics.Submission(outcomeInvalid)
		return nil, errors.Validation(MissingFieldsMessage, err)
	}

	location, err := parseLocation(input.Latitude, input.Longitude)
	if err != nil {
		uc.metrics.Submission(outcomeInvalid)
		return nil, errors.Validation(InvalidLocationMessage, err)
	}

	if err := uc.checkAttachment(input.Attachment); err != nil {
		uc.metrics.Submission(outcomeAttachmentReject)
		return nil, err
	}

	submittedAt := uc.now().UTC().Truncate(time.Millisecond)
	report := &entity.Report{
		EventType:     entity.EventType(input.EventType),
		Description:   input.Description,
		Location:      location,
		Datetime:      input.Datetime,
		ReporterEmail: input.Email,
		SubmittedAt:   submittedAt,
	}

	var image *service.AttachedImage
	if input.Attachment != nil {
		image, err = uc.storeImage(ctx, submittedAt, input.Attachment)
		if err != nil {
			uc.metrics.Submission(outcomeStorageFailed)
			return nil, err
		}
		ref := image.Filename
		report.Picture = &ref
	}

	id, err := uc.reportRepo.Save(ctx, report)
	if err != nil {
		uc.metrics.Submission(outcomeStorageFailed)
		if report.Picture != nil {
			if rmErr := uc.imageStore.Remove(ctx, *report.Picture); rmErr != nil {
				logger.Warn("Failed to remove image %s after storage failure: %v", *report.Picture, rmErr)
			}
		}
		if errors.Is(err, errors.CodeStorage) {
			return nil, err
		}
		return nil, errors.Storage("Failed to submit report", err)
	}
	report.ID = id
	uc.metrics.Submission(outcomeAccepted)
	reportLog := logger.WithReport(id)
	reportLog.Info().
		Str("event_type", string(report.EventType)).
		Bool("picture", report.HasPicture()).
		Msg("Report stored")

	if uc.publisher != nil {
		uc.publisher.PublishReport(report)
	}
	uc.dispatchNotifications(report, image)

	return &SubmitResult{
		ReportID: id,
		Message:  SubmittedMessage,
		Report:   report,
	}, nil
}

// Wait blocks until notifications already dispatched have finished.
func (uc *SubmissionUseCase) Wait() {
	uc.inflight.Wait()
}

func parseLocation(latitude, longitude string) (entity.Location, error) {
	lat, err := parseCoordinate(latitude)
	if err != nil {
		return entity.Location{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseCoordinate(longitude)
	if err != nil {
		return entity.Location{}, fmt.Errorf("longitude: %w", err)
	}
	return entity.Location{Latitude: lat, Longitude: lon}, nil
}

// parseCoordinate accepts any finite float; range is deliberately not checked.
func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func (uc *SubmissionUseCase) checkAttachment(att *Attachment) error {
	if att == nil {
		return nil
	}
	if _, ok := allowedImageTypes[att.ContentType]; !ok {
		return errors.Attachment(InvalidFileTypeMessage, fmt.Errorf("content type %q", att.ContentType))
	}
	if att.Size > uc.maxUploadBytes || int64(len(att.Data)) > uc.maxUploadBytes {
		return errors.Attachment(uc.FileTooLargeMessage(), fmt.Errorf("%d bytes", max(att.Size, int64(len(att.Data)))))
	}
	return nil
}

func (uc *SubmissionUseCase) storeImage(ctx context.Context, at time.Time, att *Attachment) (*service.AttachedImage, error) {
	name := fmt.Sprintf("%d-%s%s", at.UnixMilli(), uuid.NewString(), imageExtension(att.ContentType, att.Data))

	ref, err := uc.imageStore.Store(ctx, name, att.ContentType, att.Data)
	if err != nil {
		return nil, errors.Storage("Failed to store picture", err)
	}

	return &service.AttachedImage{
		Filename:    ref,
		ContentType: att.ContentType,
		Data:        att.Data,
	}, nil
}

// imageExtension prefers the sniffed type so the stored name matches the bytes.
func imageExtension(contentType string, data []byte) string {
	detected := mimetype.Detect(data)
	if strings.HasPrefix(detected.String(), "image/") {
		return detected.Extension()
	}
	return allowedImageTypes[contentType]
}

func (uc *SubmissionUseCase) dispatchNotifications(report *entity.Report, image *service.AttachedImage) {
	if uc.notifier == nil {
		return
	}

	var attachment *service.AttachedImage
	if image != nil {
		attachment = &service.AttachedImage{
			Filename:    lastPathSegment(image.Filename),
			ContentType: image.ContentType,
			Data:        image.Data,
		}
	}

	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), uc.notifyTimeout)
		defer cancel()

		var g errgroup.Group
		g.Go(func() error {
			uc.deliver(recipientMinistry, report, func() error {
				return uc.notifier.NotifyMinistry(ctx, report, attachment)
			})
			return nil
		})
		g.Go(func() error {
			uc.deliver(recipientReporter, report, func() error {
				return uc.notifier.NotifyReporter(ctx, report)
			})
			return nil
		})
		g.Wait()
	}()
}

func (uc *SubmissionUseCase) deliver(recipient string, report *entity.Report, send func() error) {
	err := send()
	uc.metrics.Notification(recipient, err)
	if err != nil {
		logger.LogNotificationError(report.ID, recipient, errors.Notification("Failed to send "+recipient+" email", err))
	}
}

func lastPathSegment(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
