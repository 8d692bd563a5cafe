// Package models defines the core domain entities for the boleia application.
// An Event is a single calendar entry: a date range, a title used for the
// per-person counts, and the list of people sharing the ride.
//
// Dates are kept as plain local calendar dates ("YYYY-MM-DD") because that is
// the form persisted by the calendar front end and the form the seeder matches
// against. No time-of-day or timezone is attached to an event.
package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the layout of Event.Start and Event.End.
const DateLayout = "2006-01-02"

// Event represents one calendar entry.
type Event struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"` // Matched case-insensitively by the stats counters
	Start       string   `json:"start" yaml:"start"` // YYYY-MM-DD, local
	End         string   `json:"end" yaml:"end"`     // YYYY-MM-DD, local
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	People      []string `json:"people" yaml:"people"`
}

// FormatDate renders t as a calendar date in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// Occurs reports whether the event starts or ends on date. Days strictly
// inside a multi-day range do not count.
func (e *Event) Occurs(date string) bool {
	return e.Start == date || e.End == date
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	if e.People != nil {
		people := make([]string, len(e.People))
		copy(people, e.People)
		e.People = people
	}
	return e
}

// CloneEvents deep-copies a list of events. A nil list stays nil.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	for i := range events {
		out[i] = events[i].Clone()
	}
	return out
}

// Validate checks the fields a user-entered event must carry. The store does
// not call it: persisted events are kept as they are.
func (e *Event) Validate() error {
	if e.ID == "" {
		return errors.New("event ID must not be empty")
	}
	if e.Title == "" {
		return errors.New("event title must not be empty")
	}
	start, err := ParseDate(e.Start, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", e.Start, err)
	}
	end, err := ParseDate(e.End, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", e.End, err)
	}
	if end.Before(start) {
		return errors.New("end date must not be before start date")
	}
	return nil
}
