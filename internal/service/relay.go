package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wrcheck/internal/metrics"
	"wrcheck/internal/models"
	"wrcheck/internal/repository"
)

var ErrRelaysDisabled = errors.New("relay control is disabled")

type RelayService struct {
	driver    RelayDriver
	stateRepo repository.RelayStateRepo
	eventRepo repository.EventRepo
	metrics   *metrics.Metrics
}

func NewRelayService(driver RelayDriver, stateRepo repository.RelayStateRepo, eventRepo repository.EventRepo, m *metrics.Metrics) *RelayService {
	return &RelayService{driver: driver, stateRepo: stateRepo, eventRepo: eventRepo, metrics: m}
}

// Set switches the relay on pin and logs RELAY_ON or RELAY_OFF.
func (s *RelayService) Set(ctx context.Context, pin int, on bool) (models.RelayState, error) {
	if s.driver == nil {
		return models.RelayState{}, ErrRelaysDisabled
	}
	if err := s.driver.Set(pin, on); err != nil {
		return models.RelayState{}, err
	}

	st := models.RelayState{Pin: pin, On: on, UpdatedAt: time.Now().UTC()}
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return st, err
	}
	s.metrics.SetRelay(pin, on)

	typ, word := models.EventRelayOff, "off"
	if on {
		typ, word = models.EventRelayOn, "on"
	}
	err := s.eventRepo.Append(ctx, models.Event{
		OccurredAt:  st.UpdatedAt,
		Type:        typ,
		Description: fmt.Sprintf("Relay on pin %d switched %s", pin, word),
		Metadata:    map[string]any{"pin": pin},
	})
	return st, err
}

// States reads every configured relay back from the hardware. UpdatedAt is
// zero for relays never switched since start.
func (s *RelayService) States(ctx context.Context) ([]models.RelayState, error) {
	if s.driver == nil {
		return nil, ErrRelaysDisabled
	}
	known, err := s.stateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	updated := make(map[int]time.Time, len(known))
	for _, k := range known {
		updated[k.Pin] = k.UpdatedAt
	}

	pins := s.driver.Pins()
	out := make([]models.RelayState, 0, len(pins))
	for _, pin := range pins {
		on, err := s.driver.State(pin)
		if err != nil {
			return nil, fmt.Errorf("read pin %d: %w", pin, err)
		}
		out = append(out, models.RelayState{Pin: pin, On: on, UpdatedAt: updated[pin]})
	}
	return out, nil
}
