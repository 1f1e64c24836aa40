package entity

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

type EventType string

const (
	EventEarthquake EventType = "earthquake"
	EventFlood      EventType = "flood"
	EventHurricane  EventType = "hurricane"
	EventTornado    EventType = "tornado"
	EventWildfire   EventType = "wildfire"
	EventLandslide  EventType = "landslide"
	EventTsunami    EventType = "tsunami"
	EventVolcanic   EventType = "volcanic"
	EventChemical   EventType = "chemical"
	EventAccident   EventType = "accident"
	EventOther      EventType = "other"
)

var eventLabels = map[EventType]string{
	EventEarthquake: "Earthquake",
	EventFlood:      "Flood",
	EventHurricane:  "Hurricane/Cyclone",
	EventTornado:    "Tornado",
	EventWildfire:   "Wildfire",
	EventLandslide:  "Landslide",
	EventTsunami:    "Tsunami",
	EventVolcanic:   "Volcanic Eruption",
	EventChemical:   "Chemical Hazard",
	EventAccident:   "Major Accident",
	EventOther:      "Other",
}

// EventTypes lists the known event types in display order.
func EventTypes() []EventType {
	return []EventType{
		EventEarthquake, EventFlood, EventHurricane, EventTornado, EventWildfire,
		EventLandslide, EventTsunami, EventVolcanic, EventChemical, EventAccident, EventOther,
	}
}

// Label returns the display name, or the raw value for unknown types.
func (t EventType) Label() string {
	if label, ok := eventLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t EventType) Known() bool {
	_, ok := eventLabels[t]
	return ok
}

type Location struct {
	Latitude  float64 `json:"latitude" firestore:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude" bson:"longitude"`
}

// Report is a single citizen-submitted emergency record. It is written once
// and never updated.
type Report struct {
	ID            string    `json:"id,omitempty" firestore:"-" bson:"_id,omitempty"`
	EventType     EventType `json:"eventType" firestore:"eventType" bson:"eventType"`
	Description   string    `json:"description" firestore:"description" bson:"description"`
	Location      Location  `json:"location" firestore:"location" bson:"location"`
	Datetime      string    `json:"datetime" firestore:"datetime" bson:"datetime"`
	ReporterEmail string    `json:"reporterEmail" firestore:"reporterEmail" bson:"reporterEmail"`
	Picture       *string   `json:"picture,omitempty" firestore:"picture,omitempty" bson:"picture,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt" firestore:"submittedAt" bson:"submittedAt"`
}

var ErrIncompleteReport = errors.New("report is missing required fields")

// Validate checks the fields every stored record must carry.
func (r *Report) Validate() error {
	switch {
	case r.EventType == "":
		return fmt.Errorf("%w: eventType", ErrIncompleteReport)
	case r.Description == "":
		return fmt.Errorf("%w: description", ErrIncompleteReport)
	case r.Datetime == "":
		return fmt.Errorf("%w: datetime", ErrIncompleteReport)
	case r.ReporterEmail == "":
		return fmt.Errorf("%w: reporterEmail", ErrIncompleteReport)
	case r.SubmittedAt.IsZero():
		return fmt.Errorf("%w: submittedAt", ErrIncompleteReport)
	}
	return nil
}

func (r *Report) HasPicture() bool {
	return r.Picture != nil && *r.Picture != ""
}

// MapURL links to the report's coordinates on Google Maps.
func (r *Report) MapURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
		strconv.FormatFloat(r.Location.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Location.Longitude, 'f', -1, 64))
}
