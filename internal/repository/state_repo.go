package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"wrcheck/internal/models"
)

type RelayMemory struct {
	mu     sync.RWMutex
	states map[int]models.RelayState
}

func NewRelayMemory() *RelayMemory {
	return &RelayMemory{states: make(map[int]models.RelayState)}
}

// Save upserts the state of one relay pin.
func (r *RelayMemory) Save(ctx context.Context, s models.RelayState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[s.Pin] = s
	return nil
}

// List returns the known relay states ordered by pin.
func (r *RelayMemory) List(ctx context.Context) ([]models.RelayState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.RelayState, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b models.RelayState) int { return a.Pin - b.Pin })
	return out, nil
}

type ReportMemory struct {
	mu     sync.RWMutex
	latest *models.ScanReport
}

func NewReportMemory() *ReportMemory { return &ReportMemory{} }

func (r *ReportMemory) SaveLatest(ctx context.Context, rep models.ScanReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = &rep
	return nil
}

// Latest returns a copy of the last saved report, or nil when none exists.
func (r *ReportMemory) Latest(ctx context.Context) (*models.ScanReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return nil, nil
	}
	cp := *r.latest
	return &cp, nil
}
