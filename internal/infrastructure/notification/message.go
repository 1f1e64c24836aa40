package notification

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"emergencyreport/internal/domain/entity"
)

// Message is a rendered email ready for a transport.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReporterConfirmation is sent to the citizen who filed the report.
func ReporterConfirmation(report *entity.Report) Message {
	lines := []string{
		"Your emergency report has been submitted to the Ministry of Disaster Management.",
		"",
		"Event Type: " + string(report.EventType),
		"Description: " + report.Description,
		"Location (GPS): " + formatCoord(report.Location.Latitude) + ", " + formatCoord(report.Location.Longitude),
		"Date & Time: " + report.Datetime,
		"Submitted At: " + report.SubmittedAt.UTC().Format(time.RFC3339),
	}

	return Message{
		To:      report.ReporterEmail,
		Subject: fmt.Sprintf("Emergency Report Confirmation - %s", report.EventType),
		Text:    strings.Join(lines, "\n"),
		HTML:    toHTML("Your Emergency Report Has Been Submitted", lines[2:], ""),
	}
}

// MinistryAlert is sent to the operations mailbox for every new report.
func MinistryAlert(to string, report *entity.Report) Message {
	lines := []string{
		"Event Type: " + string(report.EventType),
		"Description: " + report.Description,
		"Latitude: " + formatCoord(report.Location.Latitude),
		"Longitude: " + formatCoord(report.Location.Longitude),
		"Date & Time: " + report.Datetime,
		"Reporter Email: " + report.ReporterEmail,
		"Submitted At: " + report.SubmittedAt.UTC().Format(time.RFC3339),
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Emergency Report: %s", report.EventType),
		Text:    strings.Join(append(lines, "Map: "+report.MapURL()), "\n"),
		HTML:    toHTML("Emergency Report Submitted", lines, report.MapURL()),
	}
}

func toHTML(title string, lines []string, mapURL string) string {
	var b strings.Builder
	b.WriteString("<h2>" + html.EscapeString(title) + "</h2><ul>")
	for _, line := range lines {
		b.WriteString("<li>" + html.EscapeString(line) + "</li>")
	}
	b.WriteString("</ul>")
	if mapURL != "" {
		b.WriteString(`<p><a href="` + html.EscapeString(mapURL) + `">View location on Google Maps</a></p>`)
	}
	return b.String()
}
