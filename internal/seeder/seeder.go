// Package seeder adds the default weekday ride to the calendar at session start.
//
// The check runs once per session: if today is a weekday and no event starts or
// ends today, one ride event is appended. Missed days are not backfilled.
package seeder

import (
	"fmt"
	"time"

	"github.com/rewired-gh/boleia/internal/logger"
	"github.com/rewired-gh/boleia/internal/models"
)

// Defaults for the seeded ride.
const (
	DefaultTitle       = "Boleia 🏎️"
	DefaultName        = "Boleia"
	DefaultDescription = "O marque veio"
)

// DefaultPeople are the two people sharing the default ride.
var DefaultPeople = []string{"Jota", "Marques"}

// Store is the part of storage.Store the seeder needs.
type Store interface {
	Events() []models.Event
	Replace(events []models.Event) error
	NextID() string
}

// Config describes the event to seed.
type Config struct {
	Title       string
	Name        string
	Description string
	People      []string
	Location    *time.Location // nil means time.Local
}

// Skip reasons reported in Result.
const (
	ReasonWeekend = "weekend"
	ReasonExists  = "event already scheduled"
	ReasonSeeded  = "seeded"
)

// Result describes what a Run did.
type Result struct {
	Date   string
	Seeded bool
	Event  models.Event
	Reason string
}

// Seeder checks today's date against the store.
type Seeder struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// New creates a Seeder. Empty config fields fall back to the defaults.
func New(store Store, cfg Config) *Seeder {
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Description == "" {
		cfg.Description = DefaultDescription
	}
	if len(cfg.People) == 0 {
		cfg.People = DefaultPeople
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Seeder{store: store, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Seeder) WithClock(now func() time.Time) *Seeder {
	s.now = now
	return s
}

// Today returns the current local date and weekday.
func (s *Seeder) Today() (string, time.Weekday) {
	local := s.now().In(s.cfg.Location)
	return models.FormatDate(local), local.Weekday()
}

// Run performs the check once and appends the ride if needed.
func (s *Seeder) Run() (Result, error) {
	today, weekday := s.Today()
	result := Result{Date: today}

	if weekday == time.Saturday || weekday == time.Sunday {
		result.Reason = ReasonWeekend
		logger.Debug("Skipping ride seeding on %s (%s)", today, weekday)
		return result, nil
	}

	events := s.store.Events()
	for i := range events {
		if events[i].Occurs(today) {
			result.Reason = ReasonExists
			logger.Debug("Event %s already scheduled for %s, not seeding", events[i].ID, today)
			return result, nil
		}
	}

	people := make([]string, len(s.cfg.People))
	copy(people, s.cfg.People)
	ev := models.Event{
		ID:          s.store.NextID(),
		Title:       s.cfg.Title,
		Start:       today,
		End:         today,
		Name:        s.cfg.Name,
		Description: s.cfg.Description,
		People:      people,
	}

	if err := s.store.Replace(append(events, ev)); err != nil {
		return result, fmt.Errorf("failed to seed ride for %s: %w", today, err)
	}

	result.Seeded = true
	result.Event = ev
	result.Reason = ReasonSeeded
	logger.Info("Seeded ride %s for %s", ev.ID, today)
	return result, nil
}
