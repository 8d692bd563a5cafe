package storage

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rewired-gh/boleia/internal/models"
)

// IDStrategy selects how Store.NextID produces identifiers.
type IDStrategy string

const (
	// IDCounter issues "1", "2", ... from a counter persisted with the list.
	// Ids are never reused, even after deletions.
	IDCounter IDStrategy = "counter"
	// IDLength issues len(list)+1. Matches ids written by the old web page
	// but collides once events are deleted.
	IDLength IDStrategy = "length"
	// IDUUID issues random v4 UUIDs.
	IDUUID IDStrategy = "uuid"
)

// ParseIDStrategy validates a configured strategy name. Empty means IDCounter.
func ParseIDStrategy(s string) (IDStrategy, error) {
	switch IDStrategy(s) {
	case "":
		return IDCounter, nil
	case IDCounter, IDLength, IDUUID:
		return IDStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown id strategy %q (want counter, length or uuid)", s)
	}
}

// maxNumericID returns the largest id that parses as a positive integer, or 0.
func maxNumericID(events []models.Event) int {
	highest := 0
	for i := range events {
		if n, err := strconv.Atoi(events[i].ID); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

func newUUID() string {
	return uuid.NewString()
}
