// Package export writes the event list as JSON, YAML or iCalendar.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"gopkg.in/yaml.v3"

	"github.com/rewired-gh/boleia/internal/models"
)

// Format names accepted by Write.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatICS  = "ics"
)

const productID = "-//boleia//calendar//PT"

// Write encodes events to w in the given format.
func Write(w io.Writer, format string, events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(events); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(events); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatICS:
		cal, err := Calendar(events, time.Now())
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, cal.Serialize())
		return err
	default:
		return fmt.Errorf("unknown export format %q (want json, yaml or ics)", format)
	}
}

// Calendar builds an iCalendar with one all-day VEVENT per event. DTEND is
// exclusive, so it is the day after End. Events with unparsable dates are
// rejected.
func Calendar(events []models.Event, stamp time.Time) (*ics.Calendar, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		start, err := models.ParseDate(ev.Start, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid start %q: %w", ev.ID, ev.Start, err)
		}
		end, err := models.ParseDate(ev.End, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid end %q: %w", ev.ID, ev.End, err)
		}

		vev := cal.AddEvent(ev.ID + "@boleia")
		vev.SetDtStampTime(stamp)
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		vev.SetAllDayStartAt(start)
		vev.SetAllDayEndAt(end.AddDate(0, 0, 1))
		for _, person := range ev.People {
			vev.AddAttendee(person, ics.WithCN(person))
		}
	}
	return cal, nil
}
