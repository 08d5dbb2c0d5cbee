package repository

import (
	"context"
	"time"

	"wrcheck/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// RelayStateRepo remembers the last commanded level of each relay.
type RelayStateRepo interface {
	Save(ctx context.Context, s models.RelayState) error
	List(ctx context.Context) ([]models.RelayState, error)
}

// ReportRepo keeps the most recent scan report.
type ReportRepo interface {
	SaveLatest(ctx context.Context, r models.ScanReport) error
	Latest(ctx context.Context) (*models.ScanReport, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.Event) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error)
}

type Repository struct {
	RelayRepo  RelayStateRepo
	ReportRepo ReportRepo
	EventRepo  EventRepo
	Auth       Authorization
}

// NewRepository builds in-memory stores. Nothing survives a restart.
func NewRepository(maxEvents int) *Repository {
	return &Repository{
		RelayRepo:  NewRelayMemory(),
		ReportRepo: NewReportMemory(),
		EventRepo:  NewEventMemory(maxEvents),
		Auth:       NewOperatorMemory(),
	}
}
