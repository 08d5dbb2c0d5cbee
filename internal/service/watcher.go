package service

import (
	"context"
	"time"

	"wrcheck/internal/logger"
	"wrcheck/internal/models"
	"wrcheck/internal/repository"
	"wrcheck/internal/scanner"
)

// WatcherService periodically rescans the stat log a bench node writes to.
type WatcherService struct {
	scan      Scan
	eventRepo repository.EventRepo
	log       *logger.Logger
	path      string
	opts      scanner.Options
}

func NewWatcherService(scan Scan, eventRepo repository.EventRepo, log *logger.Logger, path string, opts scanner.Options) *WatcherService {
	if log == nil {
		log = logger.Nop()
	}
	return &WatcherService{scan: scan, eventRepo: eventRepo, log: log, path: path, opts: opts}
}

// Run scans once per tick until ctx is canceled. It returns at once when no
// path is configured.
func (s *WatcherService) Run(ctx context.Context, tick time.Duration) {
	if s.path == "" || tick <= 0 {
		return
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.scanOnce(ctx)
		}
	}
}

func (s *WatcherService) scanOnce(ctx context.Context) {
	rep, err := s.scan.ScanFile(ctx, s.path, s.opts)
	if err != nil {
		s.log.Errorw("watch_scan_failed", "path", s.path, "err", err)
		ev := models.Event{
			Type:        models.EventError,
			Description: "Scan of watched stat log failed",
			Metadata:    map[string]any{"path": s.path, "error": err.Error()},
		}
		if aerr := s.eventRepo.Append(ctx, ev); aerr != nil {
			s.log.Warnw("watch_event_append_failed", "path", s.path, "err", aerr)
		}
		return
	}
	if rep.Failures > 0 {
		s.log.Warnw("watch_scan_failures", "path", s.path,
			"sync_mismatches", rep.SyncMismatches, "out_of_range", rep.OutOfRange)
		return
	}
	s.log.Debugw("watch_scan_ok", "path", s.path, "lines", rep.Lines)
}
