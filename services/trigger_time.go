package services

import (
	"strings"
	"time"
)

const (
	dateLayout          = "2006-01-02"
	localDateTimeLayout = "2006-01-02T15:04:05"
)

// TriggerClock converts stored date strings into absolute trigger instants,
// normalized to a fixed hour of day in the business timezone.
type TriggerClock struct {
	Location    *time.Location
	TriggerHour int
}

// ResolveTriggerInstant resolves a calendar date or timestamp string into the
// absolute instant at which a lifecycle transition becomes due. Returns nil
// for missing or unparseable input.
//
// Timestamps carrying an explicit UTC marker are reinterpreted as
// business-zone wall clock before normalization, so the same calendar day
// always yields the same instant regardless of input representation.
func (tc TriggerClock) ResolveTriggerInstant(input *string) *time.Time {
	if input == nil {
		return nil
	}
	s := strings.TrimSpace(*input)
	if s == "" {
		return nil
	}

	var year int
	var month time.Month
	var day int

	if t, err := time.ParseInLocation(dateLayout, s, tc.Location); err == nil {
		year, month, day = t.Date()
	} else if t, err := time.ParseInLocation(localDateTimeLayout, s, tc.Location); err == nil {
		year, month, day = t.Date()
	} else if t, err := time.Parse(time.RFC3339, s); err == nil {
		if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
			// keep the literal wall-clock day from the UTC representation
			year, month, day = t.UTC().Date()
		} else {
			year, month, day = t.In(tc.Location).Date()
		}
	} else {
		return nil
	}

	instant := time.Date(year, month, day, tc.TriggerHour, 0, 0, 0, tc.Location)
	return &instant
}

// Today returns the current business-zone calendar date string.
func (tc TriggerClock) Today() string {
	return time.Now().In(tc.Location).Format(dateLayout)
}
