// Package session wires the store, the stats tracker, the seeder and the
// optional notifier for one application run.
//
// A session loads the event list, runs the ride seeder exactly once, and from
// then on keeps the counts current on every change.
package session

import (
	"errors"
	"fmt"
	"os"

	"github.com/rewired-gh/boleia/internal/config"
	"github.com/rewired-gh/boleia/internal/logger"
	"github.com/rewired-gh/boleia/internal/models"
	"github.com/rewired-gh/boleia/internal/seeder"
	"github.com/rewired-gh/boleia/internal/stats"
	"github.com/rewired-gh/boleia/internal/storage"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("session already started")

// Notifier receives seeded rides and summaries. *telegram.Client implements it.
type Notifier interface {
	SendSeeded(ev models.Event) error
	SendSummary(summary stats.Summary, people []stats.PersonCount) error
}

// Session is one application run.
type Session struct {
	Store    *storage.Store
	Stats    *stats.Tracker
	Seeder   *seeder.Seeder
	notifier Notifier
	cfg      *config.Config
	started  bool
}

// OpenSlot builds the storage slot selected by cfg.
func OpenSlot(cfg config.StorageConfig) (storage.Slot, error) {
	switch cfg.Backend {
	case "file":
		return storage.NewFileSlot(cfg.FilePath, os.FileMode(cfg.FilePermissions), os.FileMode(cfg.DirPermissions)), nil
	case "sqlite":
		slot, err := storage.NewSQLiteSlot(cfg.DBPath, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite slot: %w", err)
		}
		return slot, nil
	case "memory":
		return storage.NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// New opens the configured slot and wires the components. notifier may be nil.
func New(cfg *config.Config, notifier Notifier) (*Session, error) {
	slot, err := OpenSlot(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return NewWithSlot(cfg, slot, notifier)
}

// NewWithSlot wires a session around an already opened slot.
func NewWithSlot(cfg *config.Config, slot storage.Slot, notifier Notifier) (*Session, error) {
	strategy, err := storage.ParseIDStrategy(cfg.Storage.IDStrategy)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Seeder.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid seeder timezone: %w", err)
	}

	store := storage.New(slot, strategy)
	tracker := stats.NewTracker()
	store.Subscribe(tracker.Update)

	sd := seeder.New(store, seeder.Config{
		Title:       cfg.Seeder.Title,
		Name:        cfg.Seeder.Name,
		Description: cfg.Seeder.Description,
		People:      cfg.Seeder.People,
		Location:    loc,
	})

	return &Session{
		Store:    store,
		Stats:    tracker,
		Seeder:   sd,
		notifier: notifier,
		cfg:      cfg,
	}, nil
}

// Start loads the persisted events and, when seed is true and the seeder is
// enabled, runs the seeder. It may only be called once.
func (s *Session) Start(seed bool) (seeder.Result, error) {
	if s.started {
		return seeder.Result{}, ErrAlreadyStarted
	}
	s.started = true

	events := s.Store.Load()
	logger.Info("Loaded %d events", len(events))

	if !seed || !s.cfg.Seeder.Enabled {
		logger.Debug("Ride seeding disabled for this session")
		return seeder.Result{}, nil
	}

	res, err := s.Seeder.Run()
	if err != nil {
		return res, err
	}
	if res.Seeded && s.notifier != nil {
		if err := s.notifier.SendSeeded(res.Event); err != nil {
			logger.Warn("Failed to send seeded ride notification: %v", err)
		}
	}
	return res, nil
}

// Summary prices the current counts with the configured prices.
func (s *Session) Summary() stats.Summary {
	return stats.Summarize(s.Stats.Counts(), s.cfg.Stats.TitlePrices(), s.cfg.Stats.Currency)
}

// Notify sends the current summary. It fails when no notifier is configured.
func (s *Session) Notify() error {
	if s.notifier == nil {
		return errors.New("notifications are disabled")
	}
	return s.notifier.SendSummary(s.Summary(), s.Stats.People())
}

// Close releases the storage slot.
func (s *Session) Close() error {
	return s.Store.Close()
}
