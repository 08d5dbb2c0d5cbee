package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wrcheck/internal/models"
	"wrcheck/internal/service"
)

func TestEventsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.Event{
		{EventID: "e1", OccurredAt: now, Type: models.EventScan, Description: "scan"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: models.EventSyncLost, Description: "sync lost"},
	}
	logs := &mockEventLog{resp: events}
	s := &service.Service{
		Authorization: auth,
		EventLog:      logs,
	}
	r := newTestRouter(s)

	// Invalid 'from' → 400
	w := serveAuthed(r, httptest.NewRequest(http.MethodGet, "/api/v1/events/?from=notatime", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// Reversed range → 400
	w = serveAuthed(r, httptest.NewRequest(http.MethodGet, "/api/v1/events/?from=2026-03-02&to=2026-03-01T00:00:00Z", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 reversed range, got %d", w.Code)
	}

	// Valid range and lowercase type (normalized to upper before the service call)
	q := "/api/v1/events/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=sync_lost"
	w = serveAuthed(r, httptest.NewRequest(http.MethodGet, q, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("events status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int            `json:"count"`
		Events []models.Event `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != models.EventSyncLost {
		t.Fatalf("expected lastType %s, got %q", models.EventSyncLost, logs.lastType)
	}
	if !logs.lastFrom.Equal(now) {
		t.Fatalf("expected from %v, got %v", now, logs.lastFrom)
	}
}

func TestEventsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs})

	w := serveAuthed(r, httptest.NewRequest(http.MethodGet, "/api/v1/events/?to=2026-03-31", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	want := time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(want) {
		t.Fatalf("expected to=%v, got %v", want, logs.lastTo)
	}
}

func TestEventsHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid_range", service.ErrInvalidTimeRange, http.StatusBadRequest},
		{"unknown_type", service.ErrUnknownEventType, http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logs := &mockEventLog{err: tc.err}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs})

			w := serveAuthed(r, httptest.NewRequest(http.MethodGet, "/api/v1/events/", nil))
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, w.Code, w.Body.String())
			}
		})
	}
}
