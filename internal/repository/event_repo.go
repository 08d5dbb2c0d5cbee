package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"wrcheck/internal/models"

	"github.com/google/uuid"
)

// DefaultMaxEvents bounds the in-memory event log.
const DefaultMaxEvents = 10_000

// EventMemory is an append-only, bounded event log. When full, the oldest
// events are dropped.
type EventMemory struct {
	mu     sync.RWMutex
	max    int
	events []models.Event
}

func NewEventMemory(max int) *EventMemory {
	if max <= 0 {
		max = DefaultMaxEvents
	}
	return &EventMemory{max: max}
}

// Append stores a new event. If EventID or OccurredAt are empty, they’re set.
func (r *EventMemory) Append(ctx context.Context, e models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}
	e.Type = strings.ToUpper(strings.TrimSpace(e.Type))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if over := len(r.events) - r.max; over > 0 {
		r.events = append(r.events[:0:0], r.events[over:]...)
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive) and/or type, ordered ASC.
func (r *EventMemory) List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	typ = strings.ToUpper(strings.TrimSpace(typ))

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Event, 0, len(r.events))
	for _, ev := range r.events {
		if !from.IsZero() && ev.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && ev.OccurredAt.After(to) {
			continue
		}
		if typ != "" && ev.Type != typ {
			continue
		}
		out = append(out, ev)
	}
	// Appends may come from concurrent requests with slightly skewed clocks.
	sortByTime(out)
	return out, nil
}

func sortByTime(events []models.Event) {
	slices.SortStableFunc(events, func(a, b models.Event) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
}
