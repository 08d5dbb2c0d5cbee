package service

import (
	"context"
	"strings"
	"testing"

	"wrcheck/internal/repository"
	"wrcheck/internal/scanner"
)

func TestMonitoringService_GetState(t *testing.T) {
	repos := repository.NewRepository(0)
	relays := NewRelayService(newFakeDriver(17, 22), repos.RelayRepo, repos.EventRepo, nil)
	scans := NewScanService(repos.ReportRepo, repos.EventRepo, nil)
	svc := NewMonitoringService(relays, repos.ReportRepo)
	ctx := context.Background()

	st, err := svc.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if len(st.Relays) != 2 || st.LastReport != nil {
		t.Fatalf("unexpected initial state: %+v", st)
	}

	rep, err := scans.Scan(ctx, "dump", strings.NewReader("ss:'TRACK_PHASE'\n"), scanner.Options{Sync: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	st, _ = svc.GetState(ctx)
	if st.LastReport == nil || st.LastReport.ID != rep.ID {
		t.Fatalf("last report not exposed: %+v", st.LastReport)
	}
}

func TestMonitoringService_RelaysDisabled(t *testing.T) {
	repos := repository.NewRepository(0)
	relays := NewRelayService(nil, repos.RelayRepo, repos.EventRepo, nil)
	svc := NewMonitoringService(relays, repos.ReportRepo)

	st, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if st.Relays == nil || len(st.Relays) != 0 {
		t.Fatalf("expected empty relay list, got %+v", st.Relays)
	}
}
