package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/repository"
	"emergencyreport/pkg/errors"
	"emergencyreport/pkg/logger"
)

type mongoReportRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoReportRepository(db *mongo.Database) repository.ReportRepository {
	return &mongoReportRepository{
		collection: db.Collection(reportsCollection),
		timeout:    8 * time.Second,
	}
}

func (r *mongoReportRepository) Save(ctx context.Context, report *entity.Report) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		record := *report
		record.ID = candidateID(report.SubmittedAt, attempt)

		_, err := r.collection.InsertOne(ctx, &record)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return "", errors.Storage("Failed to insert report", err)
		}

		report.ID = record.ID
		return record.ID, nil
	}

	return "", errors.Storage("Failed to allocate report id", nil)
}

func (r *mongoReportRepository) ListAll(ctx context.Context) ([]*entity.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Storage("Failed to query reports", err)
	}
	defer cur.Close(ctx)

	reports := []*entity.Report{}
	for cur.Next(ctx) {
		var report entity.Report
		if err := cur.Decode(&report); err != nil {
			logger.Warn("Skipping unreadable report document %v: %v", cur.Current.Lookup("_id"), err)
			continue
		}
		if err := report.Validate(); err != nil {
			logger.Warn("Skipping incomplete report document %s: %v", report.ID, err)
			continue
		}
		reports = append(reports, &report)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Storage("Failed to read reports", err)
	}

	return reports, nil
}
