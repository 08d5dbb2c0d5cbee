package service

import (
	"context"
	"errors"

	"wrcheck/internal/models"
	"wrcheck/internal/repository"
)

type MonitoringService struct {
	relays     Relay
	reportRepo repository.ReportRepo
}

func NewMonitoringService(relays Relay, reportRepo repository.ReportRepo) *MonitoringService {
	return &MonitoringService{relays: relays, reportRepo: reportRepo}
}

// GetState returns the relay levels and the latest scan report.
// With relay control disabled the relay list is empty.
func (s *MonitoringService) GetState(ctx context.Context) (models.BenchState, error) {
	relays, err := s.relays.States(ctx)
	if err != nil && !errors.Is(err, ErrRelaysDisabled) {
		return models.BenchState{}, err
	}
	if relays == nil {
		relays = []models.RelayState{}
	}

	last, err := s.reportRepo.Latest(ctx)
	if err != nil {
		return models.BenchState{}, err
	}
	return models.BenchState{Relays: relays, LastReport: last}, nil
}
