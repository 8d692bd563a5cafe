package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rewired-gh/boleia/internal/models"
)

func sampleEvents() []models.Event {
	return []models.Event{
		{
			ID:          "1",
			Title:       "Ana",
			Start:       "2026-10-12",
			End:         "2026-10-12",
			Name:        "Ana",
			Description: "Escola",
			People:      []string{"Jota", "Marques"},
		},
		{
			ID:     "2",
			Title:  "Jame",
			Start:  "2026-10-13",
			End:    "2026-10-14",
			People: []string{},
		},
	}
}

func TestStore_LoadEmptySlot(t *testing.T) {
	s := New(NewMemorySlot(), IDCounter)

	events := s.Load()
	if events == nil {
		t.Fatal("Expected empty, non-nil list")
	}
	if len(events) != 0 {
		t.Errorf("Expected 0 events, got %d", len(events))
	}
}

func TestStore_LoadMalformedSlot(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"truncated array", `[{"id":"1","title":"Ana"`},
		{"wrong shape", `{"version":"2","events":"nope"}`},
		{"unknown version", `{"version":"9","events":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewMemorySlot()
			if err := slot.Write([]byte(tt.data)); err != nil {
				t.Fatal(err)
			}

			events := New(slot, IDCounter).Load()
			if len(events) != 0 {
				t.Errorf("Expected malformed slot to load as empty, got %d events", len(events))
			}
		})
	}
}

func TestStore_ReplaceThenLoadRoundTrip(t *testing.T) {
	slot := NewMemorySlot()
	s := New(slot, IDCounter)

	first := sampleEvents()
	if err := s.Replace(first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	last := first[:1]
	if err := s.Replace(last); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	loaded := New(slot, IDCounter).Load()
	if !reflect.DeepEqual(loaded, last) {
		t.Errorf("Expected %+v, got %+v", last, loaded)
	}
}

func TestStore_ReplaceCopiesInput(t *testing.T) {
	s := New(NewMemorySlot(), IDCounter)

	events := sampleEvents()
	if err := s.Replace(events); err != nil {
		t.Fatal(err)
	}
	events[0].Title = "mutated"
	events[0].People[0] = "mutated"

	got := s.Events()
	if got[0].Title != "Ana" || got[0].People[0] != "Jota" {
		t.Errorf("Store list changed through caller's slice: %+v", got[0])
	}
}

func TestStore_LoadLegacyArray(t *testing.T) {
	slot := NewMemorySlot()
	legacy := `[{"id":"1","title":"Ana","start":"2026-10-12","end":"2026-10-12","name":"Ana","description":"","people":["Jota"]},
{"id":"7","title":"Jame","start":"2026-10-13","end":"2026-10-13","name":"Jame","description":"","people":[]}]`
	if err := slot.Write([]byte(legacy)); err != nil {
		t.Fatal(err)
	}

	s := New(slot, IDCounter)
	events := s.Load()
	if len(events) != 2 {
		t.Fatalf("Expected 2 legacy events, got %d", len(events))
	}

	// Counter resumes after the highest numeric id.
	if id := s.NextID(); id != "8" {
		t.Errorf("Expected next id 8, got %s", id)
	}
}

func TestStore_NextIDStrategies(t *testing.T) {
	t.Run("counter survives deletes", func(t *testing.T) {
		slot := NewMemorySlot()
		s := New(slot, IDCounter)
		s.Load()

		for i := 0; i < 3; i++ {
			if err := s.Add(models.Event{ID: s.NextID(), Title: "Ana"}); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.Delete("3"); err != nil {
			t.Fatal(err)
		}

		if id := s.NextID(); id != "4" {
			t.Errorf("Expected 4 after delete, got %s", id)
		}

		// The counter is persisted with the list.
		if err := s.Replace(s.Events()); err != nil {
			t.Fatal(err)
		}
		reloaded := New(slot, IDCounter)
		reloaded.Load()
		if id := reloaded.NextID(); id != "5" {
			t.Errorf("Expected 5 after reload, got %s", id)
		}
	})

	t.Run("length reproduces legacy ids", func(t *testing.T) {
		s := New(NewMemorySlot(), IDLength)
		if err := s.Replace(sampleEvents()); err != nil {
			t.Fatal(err)
		}
		if id := s.NextID(); id != "3" {
			t.Errorf("Expected 3, got %s", id)
		}
		if id := s.NextID(); id != "3" {
			t.Errorf("Expected length strategy to be stable without writes, got %s", id)
		}
	})

	t.Run("uuid", func(t *testing.T) {
		s := New(NewMemorySlot(), IDUUID)
		a, b := s.NextID(), s.NextID()
		if a == b || len(a) != 36 {
			t.Errorf("Expected distinct UUIDs, got %q and %q", a, b)
		}
	})
}

func TestParseIDStrategy(t *testing.T) {
	if got, err := ParseIDStrategy(""); err != nil || got != IDCounter {
		t.Errorf("Expected empty to default to counter, got %q, %v", got, err)
	}
	if _, err := ParseIDStrategy("random"); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}

func TestStore_AddUpdateDelete(t *testing.T) {
	s := New(NewMemorySlot(), IDCounter)
	if err := s.Replace(sampleEvents()); err != nil {
		t.Fatal(err)
	}

	if err := s.Add(models.Event{ID: "1", Title: "dup"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}

	updated := sampleEvents()[1]
	updated.Title = "Rafa Resi"
	if err := s.Update(updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := s.Get("2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Rafa Resi" {
		t.Errorf("Expected updated title, got %s", got.Title)
	}

	if err := s.Update(models.Event{ID: "99"}); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}

	if err := s.Delete("1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(s.Events()) != 1 {
		t.Errorf("Expected 1 event after delete, got %d", len(s.Events()))
	}
	if err := s.Delete("1"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound on second delete, got %v", err)
	}
}

func TestStore_SubscribeSeesEveryChange(t *testing.T) {
	s := New(NewMemorySlot(), IDCounter)

	var sizes []int
	s.Subscribe(func(events []models.Event) {
		sizes = append(sizes, len(events))
	})

	s.Load()
	if err := s.Replace(sampleEvents()); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("2"); err != nil {
		t.Fatal(err)
	}
	// Failed mutations do not notify.
	_ = s.Delete("missing")

	want := []int{0, 2, 1}
	if !reflect.DeepEqual(sizes, want) {
		t.Errorf("Expected notifications %v, got %v", want, sizes)
	}
}

type failingSlot struct{ MemorySlot }

func (f *failingSlot) Write([]byte) error { return errors.New("disk full") }

func TestStore_ReplaceReportsWriteError(t *testing.T) {
	s := New(&failingSlot{}, IDCounter)

	err := s.Replace(sampleEvents())
	if err == nil {
		t.Fatal("Expected write error")
	}
	// The in-memory list is still the source of truth.
	if len(s.Events()) != 2 {
		t.Errorf("Expected list to be replaced in memory, got %d", len(s.Events()))
	}
}

func TestFileSlot_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.json")
	s := New(NewFileSlot(path, 0o600, 0o700), IDCounter)

	if err := s.Replace(sampleEvents()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file should not remain after write")
	}

	loaded := New(NewFileSlot(path, 0o600, 0o700), IDCounter).Load()
	if !reflect.DeepEqual(loaded, sampleEvents()) {
		t.Errorf("Expected %+v, got %+v", sampleEvents(), loaded)
	}
}

func TestFileSlot_MissingFileIsEmpty(t *testing.T) {
	slot := NewFileSlot(filepath.Join(t.TempDir(), "none.json"), 0, 0)

	if _, err := slot.Read(); !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("Expected ErrSlotEmpty, got %v", err)
	}
}

func TestFileSlot_EmptyPathUsesTmpDir(t *testing.T) {
	slot := NewFileSlot("", 0, 0)

	expected := filepath.Join(os.TempDir(), "boleia", "events.json")
	if slot.Path() != expected {
		t.Errorf("Expected %s, got %s", expected, slot.Path())
	}
}

func TestSQLiteSlot_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boleia.db")

	slot, err := NewSQLiteSlot(path, "ourEvents")
	if err != nil {
		t.Fatalf("NewSQLiteSlot failed: %v", err)
	}
	if _, err := slot.Read(); !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("Expected ErrSlotEmpty on fresh database, got %v", err)
	}

	s := New(slot, IDCounter)
	if err := s.Replace(sampleEvents()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	// Overwrite, not append.
	if err := s.Replace(sampleEvents()[:1]); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteSlot(path, "ourEvents")
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded := New(reopened, IDCounter).Load()
	if !reflect.DeepEqual(loaded, sampleEvents()[:1]) {
		t.Errorf("Expected %+v, got %+v", sampleEvents()[:1], loaded)
	}

	other, err := NewSQLiteSlot(path, "otherCalendar")
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if _, err := other.Read(); !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("Expected other key to be empty, got %v", err)
	}
}
