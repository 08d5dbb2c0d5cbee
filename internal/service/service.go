package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"wrcheck/internal/logger"
	"wrcheck/internal/metrics"
	"wrcheck/internal/models"
	"wrcheck/internal/repository"
	"wrcheck/internal/scanner"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Scan checks WR-Core stat dumps and records the outcome.
type Scan interface {
	Scan(ctx context.Context, source string, r io.Reader, opts scanner.Options) (models.ScanReport, error)
	ScanFile(ctx context.Context, path string, opts scanner.Options) (models.ScanReport, error)
}

// Relay drives the WR-LEN power relays.
type Relay interface {
	Set(ctx context.Context, pin int, on bool) (models.RelayState, error)
	States(ctx context.Context) ([]models.RelayState, error)
}

// Monitoring exposes the read-only bench state (relays, last report).
type Monitoring interface {
	GetState(ctx context.Context) (models.BenchState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Event, error)
}

// Watcher rescans a live stat log until ctx is canceled.
type Watcher interface {
	Run(ctx context.Context, tick time.Duration)
}

// RelayDriver is the hardware side of Relay. *relay.Bank implements it.
type RelayDriver interface {
	Pins() []int
	Set(pin int, on bool) error
	State(pin int) (bool, error)
}

// Service aggregates all sub-services.
type Service struct {
	Scan
	Relay
	Monitoring
	EventLog
	Watcher
	Authorization
}

// Deps carries what the services need besides the stores.
type Deps struct {
	// Relays is nil when relay control is disabled.
	Relays  RelayDriver
	Metrics *metrics.Metrics
	Log     *logger.Logger

	SigningKey string
	TokenTTL   time.Duration
	Operators  []models.Operator
	// AllowSignUp lets anyone register through /auth/sign-up.
	AllowSignUp bool

	WatchPath    string
	WatchOptions scanner.Options
}

// NewService wires the repository layer into concrete services and
// registers the configured operators.
func NewService(repos *repository.Repository, deps Deps) (*Service, error) {
	scan := NewScanService(repos.ReportRepo, repos.EventRepo, deps.Metrics)
	relays := NewRelayService(deps.Relays, repos.RelayRepo, repos.EventRepo, deps.Metrics)
	auth := NewAuthService(repos.Auth, deps.SigningKey, deps.TokenTTL)
	auth.AllowSignUp(deps.AllowSignUp)
	if err := auth.Seed(deps.Operators); err != nil {
		return nil, fmt.Errorf("seed operators: %w", err)
	}
	return &Service{
		Scan:          scan,
		Relay:         relays,
		Monitoring:    NewMonitoringService(relays, repos.ReportRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Watcher:       NewWatcherService(scan, repos.EventRepo, deps.Log, deps.WatchPath, deps.WatchOptions),
		Authorization: auth,
	}, nil
}
