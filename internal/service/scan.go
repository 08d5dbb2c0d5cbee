package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"wrcheck/internal/metrics"
	"wrcheck/internal/models"
	"wrcheck/internal/repository"
	"wrcheck/internal/scanner"

	"github.com/google/uuid"
)

type ScanService struct {
	reportRepo repository.ReportRepo
	eventRepo  repository.EventRepo
	metrics    *metrics.Metrics
}

func NewScanService(reportRepo repository.ReportRepo, eventRepo repository.EventRepo, m *metrics.Metrics) *ScanService {
	return &ScanService{reportRepo: reportRepo, eventRepo: eventRepo, metrics: m}
}

// Scan reads a whole dump from r and runs the checks in opts.
func (s *ScanService) Scan(ctx context.Context, source string, r io.Reader, opts scanner.Options) (models.ScanReport, error) {
	sc, err := scanner.New(r)
	if err != nil {
		return models.ScanReport{}, err
	}
	return s.record(ctx, source, sc, opts)
}

// ScanFile loads the dump at path; the file is released before the checks run.
func (s *ScanService) ScanFile(ctx context.Context, path string, opts scanner.Options) (models.ScanReport, error) {
	sc, err := scanner.Load(path)
	if err != nil {
		return models.ScanReport{}, err
	}
	return s.record(ctx, path, sc, opts)
}

func (s *ScanService) record(ctx context.Context, source string, sc *scanner.Scanner, opts scanner.Options) (models.ScanReport, error) {
	now := time.Now().UTC()
	rep := models.ScanReport{
		ID:        uuid.NewString(),
		Source:    source,
		ScannedAt: now,
		Report:    scanner.Run(sc, opts),
	}
	s.metrics.ObserveScan(rep.SyncMismatches, rep.OutOfRange, rep.MeanTempC)

	if err := s.reportRepo.SaveLatest(ctx, rep); err != nil {
		return rep, fmt.Errorf("save report: %w", err)
	}
	for _, ev := range scanEvents(rep) {
		ev.OccurredAt = now
		if err := s.eventRepo.Append(ctx, ev); err != nil {
			return rep, fmt.Errorf("append %s event: %w", ev.Type, err)
		}
	}
	return rep, nil
}

func scanEvents(rep models.ScanReport) []models.Event {
	events := []models.Event{{
		Type:        models.EventScan,
		Description: fmt.Sprintf("Scanned %s: %d failures", rep.Source, rep.Failures),
		Metadata: map[string]any{
			"report_id": rep.ID,
			"lines":     rep.Lines,
			"failures":  rep.Failures,
		},
	}}
	if rep.SyncMismatches > 0 {
		events = append(events, models.Event{
			Type:        models.EventSyncLost,
			Description: "WR sync is lost",
			Metadata: map[string]any{
				"report_id":      rep.ID,
				"mismatches":     rep.SyncMismatches,
				"expected_state": rep.ExpectedState,
			},
		})
	}
	if rep.OutOfRange > 0 {
		meta := map[string]any{
			"report_id":    rep.ID,
			"out_of_range": rep.OutOfRange,
			"temp_min":     rep.TempMin,
			"temp_max":     rep.TempMax,
		}
		if rep.MeanTempC != nil {
			meta["mean_temp_c"] = *rep.MeanTempC
		}
		events = append(events, models.Event{
			Type:        models.EventTempOutOfRange,
			Description: "Temperature was out of range",
			Metadata:    meta,
		})
	}
	return events
}
