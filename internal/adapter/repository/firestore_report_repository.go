package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/repository"
	"emergencyreport/pkg/errors"
	"emergencyreport/pkg/logger"
)

const reportsCollection = "reports"

type firestoreReportRepository struct {
	client *firestore.Client
}

func NewFirestoreReportRepository(client *firestore.Client) repository.ReportRepository {
	return &firestoreReportRepository{
		client: client,
	}
}

func (r *firestoreReportRepository) Save(ctx context.Context, report *entity.Report) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := candidateID(report.SubmittedAt, attempt)

		_, err := r.client.Collection(reportsCollection).Doc(id).Create(ctx, report)
		if status.Code(err) == codes.AlreadyExists {
			continue
		}
		if err != nil {
			return "", errors.Storage("Failed to create report", err)
		}

		report.ID = id
		return id, nil
	}

	return "", errors.Storage("Failed to allocate report id", nil)
}

func (r *firestoreReportRepository) ListAll(ctx context.Context) ([]*entity.Report, error) {
	iter := r.client.Collection(reportsCollection).Documents(ctx)
	defer iter.Stop()

	reports := []*entity.Report{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Storage("Failed to iterate reports", err)
		}

		var report entity.Report
		if err := doc.DataTo(&report); err != nil {
			logger.Warn("Skipping unreadable report document %s: %v", doc.Ref.ID, err)
			continue
		}
		if err := report.Validate(); err != nil {
			logger.Warn("Skipping incomplete report document %s: %v", doc.Ref.ID, err)
			continue
		}

		report.ID = doc.Ref.ID
		reports = append(reports, &report)
	}

	return reports, nil
}
