// Package storage holds the calendar event list and persists it to a single
// key-value slot (a JSON file or a SQLite row).
//
// The in-memory list is the source of truth. Every Replace rewrites the whole
// serialized list to the slot; there is no diffing or batching. Load fails
// soft: a missing or unreadable slot yields an empty list.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rewired-gh/boleia/internal/logger"
	"github.com/rewired-gh/boleia/internal/models"
)

var (
	// ErrEventNotFound is returned by Update and Delete for unknown ids.
	ErrEventNotFound = errors.New("event not found")
	// ErrDuplicateID is returned by Add when the id is already taken.
	ErrDuplicateID = errors.New("duplicate event id")
)

const currentVersion = "2"

// PersistenceFile represents the slot content. Version 1 was a bare JSON
// array of events; Load still accepts it.
type PersistenceFile struct {
	Version string         `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	NextID  int            `json:"next_id"`
	Events  []models.Event `json:"events"`
}

// Listener is called with a copy of the list after it changes.
type Listener func(events []models.Event)

// Store is the event list plus its persistence slot.
type Store struct {
	slot       Slot
	idStrategy IDStrategy
	events     []models.Event
	counter    int // last id issued by the counter strategy
	listeners  []Listener
	mu         sync.RWMutex
}

// New creates a Store backed by slot. The list starts empty until Load.
func New(slot Slot, idStrategy IDStrategy) *Store {
	if idStrategy == "" {
		idStrategy = IDCounter
	}
	return &Store{
		slot:       slot,
		idStrategy: idStrategy,
		events:     []models.Event{},
	}
}

// Subscribe registers fn to run after every Load and Replace.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load reads the slot into memory and returns the list. Absent or malformed
// content gives an empty list; the problem is logged, never returned.
func (s *Store) Load() []models.Event {
	events, counter := s.readSlot()

	s.mu.Lock()
	s.events = events
	s.counter = max(counter, maxNumericID(events))
	out := models.CloneEvents(s.events)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, out)
	return models.CloneEvents(out)
}

func (s *Store) readSlot() ([]models.Event, int) {
	data, err := s.slot.Read()
	if errors.Is(err, ErrSlotEmpty) {
		logger.Debug("Event slot is empty, starting with no events")
		return []models.Event{}, 0
	}
	if err != nil {
		logger.Warn("Failed to read event slot, starting with no events: %v", err)
		return []models.Event{}, 0
	}

	events, counter, err := decode(data)
	if err != nil {
		logger.Warn("Malformed event slot, starting with no events: %v", err)
		return []models.Event{}, 0
	}
	logger.Debug("Loaded %d events from slot", len(events))
	return events, counter
}

// decode accepts both the current envelope and the version 1 bare array.
func decode(data []byte) ([]models.Event, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var events []models.Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal events: %w", err)
		}
		if events == nil {
			events = []models.Event{}
		}
		return events, 0, nil
	}

	var file PersistenceFile
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	if file.Version != currentVersion {
		return nil, 0, fmt.Errorf("unsupported slot version %q", file.Version)
	}
	if file.Events == nil {
		file.Events = []models.Event{}
	}
	return file.Events, file.NextID, nil
}

// Events returns a copy of the current list.
func (s *Store) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneEvents(s.events)
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.events, id); i >= 0 {
		return s.events[i].Clone(), nil
	}
	return models.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
}

// Replace sets the list to exactly events and persists it in full. The
// in-memory list changes even when the write fails; the write error is
// returned.
func (s *Store) Replace(events []models.Event) error {
	s.mu.Lock()
	err := s.replaceLocked(events)
	out := models.CloneEvents(s.events)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, out)
	return err
}

func (s *Store) replaceLocked(events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	s.events = models.CloneEvents(events)
	s.counter = max(s.counter, maxNumericID(s.events))

	jsonData, err := json.Marshal(PersistenceFile{
		Version: currentVersion,
		SavedAt: time.Now(),
		NextID:  s.counter,
		Events:  s.events,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	if err := s.slot.Write(jsonData); err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}
	return nil
}

// NextID returns a fresh id according to the store's strategy.
func (s *Store) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.idStrategy {
	case IDLength:
		return strconv.Itoa(len(s.events) + 1)
	case IDUUID:
		return newUUID()
	default:
		s.counter++
		return strconv.Itoa(s.counter)
	}
}

// Add appends ev. The id must not already be in the list.
func (s *Store) Add(ev models.Event) error {
	return s.mutate(func(events []models.Event) ([]models.Event, error) {
		if indexOf(events, ev.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, ev.ID)
		}
		return append(events, ev.Clone()), nil
	})
}

// Update replaces the event with ev.ID.
func (s *Store) Update(ev models.Event) error {
	return s.mutate(func(events []models.Event) ([]models.Event, error) {
		i := indexOf(events, ev.ID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, ev.ID)
		}
		events[i] = ev.Clone()
		return events, nil
	})
}

// Delete removes the event with the given id.
func (s *Store) Delete(id string) error {
	return s.mutate(func(events []models.Event) ([]models.Event, error) {
		i := indexOf(events, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return append(events[:i], events[i+1:]...), nil
	})
}

// mutate builds a new list from a copy of the current one and replaces the
// whole list with it, under one lock.
func (s *Store) mutate(fn func([]models.Event) ([]models.Event, error)) error {
	s.mu.Lock()
	next, err := fn(models.CloneEvents(s.events))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	err = s.replaceLocked(next)
	out := models.CloneEvents(s.events)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, out)
	return err
}

// Close releases the slot.
func (s *Store) Close() error {
	return s.slot.Close()
}

func indexOf(events []models.Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}

func notify(listeners []Listener, events []models.Event) {
	for _, fn := range listeners {
		fn(models.CloneEvents(events))
	}
}
