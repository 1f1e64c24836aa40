package handler

import (
	"emergencyreport/internal/usecase"
)

var (
	reportHandler *ReportHandler
)

func Setup(
	submissionUseCase *usecase.SubmissionUseCase,
	queryUseCase *usecase.ReportQueryUseCase,
) {
	reportHandler = NewReportHandler(submissionUseCase, queryUseCase)
}

func GetReportHandler() *ReportHandler {
	return reportHandler
}
