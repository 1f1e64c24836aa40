package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/repository"
	apperrors "emergencyreport/pkg/errors"
	"emergencyreport/pkg/logger"
)

// fileReportRepository stores one indented JSON document per report.
type fileReportRepository struct {
	dir string
}

func NewFileReportRepository(dir string) repository.ReportRepository {
	return &fileReportRepository{
		dir: dir,
	}
}

func (r *fileReportRepository) Save(ctx context.Context, report *entity.Report) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", apperrors.Storage("Failed to create reports directory", err)
	}

	// The id lives in the file name only.
	record := *report
	record.ID = ""
	data, err := json.MarshalIndent(&record, "", "  ")
	if err != nil {
		return "", apperrors.Storage("Failed to encode report", err)
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", apperrors.Storage("Failed to save report", err)
		}

		id := candidateID(report.SubmittedAt, attempt)
		path := filepath.Join(r.dir, reportFileName(id))

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", apperrors.Storage("Failed to create report file", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", apperrors.Storage("Failed to write report file", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", apperrors.Storage("Failed to write report file", err)
		}

		report.ID = id
		logger.Debug("Report %s written to %s", id, path)
		return id, nil
	}

	return "", apperrors.Storage("Failed to allocate report id", fmt.Errorf("%d ids taken after %s", maxIDAttempts, candidateID(report.SubmittedAt, 0)))
}

func (r *fileReportRepository) ListAll(ctx context.Context) ([]*entity.Report, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []*entity.Report{}, nil
	}
	if err != nil {
		return nil, apperrors.Storage("Failed to read reports directory", err)
	}

	reports := make([]*entity.Report, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Storage("Failed to list reports", err)
		}

		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, reportFileSuffix) {
			continue
		}

		report, err := r.readRecord(name)
		if err != nil {
			logger.Warn("Skipping unreadable report file %s: %v", name, err)
			continue
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func (r *fileReportRepository) readRecord(name string) (*entity.Report, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return nil, err
	}

	var report entity.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}

	report.ID = idFromFileName(name)
	return &report, nil
}
