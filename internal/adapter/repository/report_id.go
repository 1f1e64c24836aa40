package repository

import (
	"strconv"
	"strings"
	"time"
)

const (
	reportFilePrefix = "report-"
	reportFileSuffix = ".json"

	// maxIDAttempts bounds how far an id is bumped past a taken millisecond.
	maxIDAttempts = 1000
)

// candidateID returns the attempt-th id for a report created at createdAt.
// Ids are unix milliseconds, so they sort chronologically; a taken id is
// bumped by one millisecond per attempt.
func candidateID(createdAt time.Time, attempt int) string {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return strconv.FormatInt(createdAt.UnixMilli()+int64(attempt), 10)
}

func reportFileName(id string) string {
	return reportFilePrefix + id + reportFileSuffix
}

func idFromFileName(name string) string {
	return strings.TrimPrefix(strings.TrimSuffix(name, reportFileSuffix), reportFilePrefix)
}
