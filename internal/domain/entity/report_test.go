package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func completeReport() *Report {
	return &Report{
		EventType:     EventFlood,
		Description:   "River overflowed",
		Location:      Location{Latitude: 6.9271, Longitude: 79.8612},
		Datetime:      "2024-01-01T10:00",
		ReporterEmail: "a@b.com",
		SubmittedAt:   time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC),
	}
}

func TestReportValidate(t *testing.T) {
	assert.NoError(t, completeReport().Validate())

	missing := map[string]func(r *Report){
		"eventType":     func(r *Report) { r.EventType = "" },
		"description":   func(r *Report) { r.Description = "" },
		"datetime":      func(r *Report) { r.Datetime = "" },
		"reporterEmail": func(r *Report) { r.ReporterEmail = "" },
		"submittedAt":   func(r *Report) { r.SubmittedAt = time.Time{} },
	}
	for field, mutate := range missing {
		r := completeReport()
		mutate(r)
		err := r.Validate()
		assert.ErrorIs(t, err, ErrIncompleteReport, field)
		assert.Contains(t, err.Error(), field)
	}
}

func TestEventTypeLabel(t *testing.T) {
	assert.Equal(t, "Hurricane/Cyclone", EventHurricane.Label())
	assert.Equal(t, "Volcanic Eruption", EventVolcanic.Label())
	assert.Equal(t, "meteor", EventType("meteor").Label())
	assert.False(t, EventType("meteor").Known())
	assert.Len(t, EventTypes(), 11)
}

func TestMapURL(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps?q=6.9271,79.8612", completeReport().MapURL())
}

func TestHasPicture(t *testing.T) {
	r := completeReport()
	assert.False(t, r.HasPicture())

	p := "/uploads/1700000000000-x.jpg"
	r.Picture = &p
	assert.True(t, r.HasPicture())
}
