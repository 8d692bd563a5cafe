// Package stats derives per-person counts from the event list.
//
// Counts match an event when its lowercased title equals one of four fixed
// category names exactly. Whitespace and accents are not normalized, so
// "Ana " or "Àna" are not counted.
package stats

import (
	"sort"
	"strings"
	"sync"

	"github.com/rewired-gh/boleia/internal/models"
)

// Category titles, lowercased.
const (
	TitleAna        = "ana"
	TitleRafaEscola = "rafa escola"
	TitleRafaResi   = "rafa resi"
	TitleJame       = "jame"
)

// Categories lists the counted titles in display order.
var Categories = []string{TitleAna, TitleRafaEscola, TitleRafaResi, TitleJame}

// Counts holds the number of events per category.
type Counts struct {
	Ana        int `json:"ana"`
	RafaEscola int `json:"rafa_escola"`
	RafaResi   int `json:"rafa_resi"`
	Jame       int `json:"jame"`
}

// Get returns the count for a category title. Unknown titles return 0.
func (c Counts) Get(title string) int {
	switch title {
	case TitleAna:
		return c.Ana
	case TitleRafaEscola:
		return c.RafaEscola
	case TitleRafaResi:
		return c.RafaResi
	case TitleJame:
		return c.Jame
	}
	return 0
}

// Total is the sum of all category counts.
func (c Counts) Total() int {
	return c.Ana + c.RafaEscola + c.RafaResi + c.Jame
}

// Compute counts events per category. Only Title is inspected.
func Compute(events []models.Event) Counts {
	var c Counts
	for i := range events {
		switch strings.ToLower(events[i].Title) {
		case TitleAna:
			c.Ana++
		case TitleRafaEscola:
			c.RafaEscola++
		case TitleRafaResi:
			c.RafaResi++
		case TitleJame:
			c.Jame++
		}
	}
	return c
}

// PersonCount is how many events list a person as a participant.
type PersonCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// People counts participant appearances across all events, most frequent first.
// An event listing the same name twice counts it twice.
func People(events []models.Event) []PersonCount {
	counts := make(map[string]int)
	for i := range events {
		for _, p := range events[i].People {
			counts[p]++
		}
	}

	out := make([]PersonCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, PersonCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Tracker keeps Counts current by listening to store changes.
type Tracker struct {
	mu     sync.RWMutex
	counts Counts
	people []PersonCount
}

// NewTracker returns a Tracker with zero counts.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update recomputes from events. It has the shape of a storage listener.
func (t *Tracker) Update(events []models.Event) {
	counts := Compute(events)
	people := People(events)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts = counts
	t.people = people
}

// Counts returns the latest counts.
func (t *Tracker) Counts() Counts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts
}

// People returns the latest participant counts.
func (t *Tracker) People() []PersonCount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]PersonCount, len(t.people))
	copy(out, t.people)
	return out
}
