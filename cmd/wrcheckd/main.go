// Command wrcheckd serves the bench API: stat dump scans, relay control,
// bench state streaming and Prometheus metrics.
//
// @title                      wrcheck bench API
// @version                    1.0
// @description                Scans White Rabbit stat dumps and drives the WR-LEN power relays.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "wrcheck/docs"
	"wrcheck/internal/config"
	"wrcheck/internal/handlers"
	"wrcheck/internal/logger"
	"wrcheck/internal/metrics"
	"wrcheck/internal/models"
	"wrcheck/internal/relay"
	"wrcheck/internal/repository"
	"wrcheck/internal/scanner"
	"wrcheck/internal/server"
	"wrcheck/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfgFile := pflag.String("config", "", "config file (default configs/config.yml)")
	pflag.String("port", "", "HTTP port (overrides server.port)")
	pflag.Parse()

	cfg, err := config.Load(*cfgFile, pflag.CommandLine, map[string]string{"server.port": "port"})
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateServer(); err != nil {
		log.Fatalw("invalid config", "err", err)
	}

	// metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		log.Fatalw("failed to register metrics", "err", err)
	}

	// relay bank (optional)
	var driver service.RelayDriver
	if cfg.Relay.Enabled {
		bank, err := relay.Open(cfg.Relay.Pins)
		if err != nil {
			log.Fatalw("failed to open gpio", "err", err, "pins", cfg.Relay.Pins)
		}
		defer func() {
			if cerr := bank.Close(); cerr != nil {
				log.Errorw("failed to release gpio", "err", cerr)
			}
		}()
		driver = bank
		log.Infow("relay control enabled", "pins", bank.Pins())
	}

	// wire dependencies
	repos := repository.NewRepository(repository.DefaultMaxEvents)
	services, err := service.NewService(repos, service.Deps{
		Relays:      driver,
		Metrics:     m,
		Log:         log,
		SigningKey:  cfg.Auth.SigningKey,
		TokenTTL:    cfg.Auth.TokenTTL,
		Operators:   operators(cfg.Auth.Operators),
		AllowSignUp: cfg.Auth.AllowSignUp,
		WatchPath:   cfg.Watch.Path,
		WatchOptions: scanner.Options{
			Sync:          cfg.Watch.Sync,
			ExpectedState: cfg.Scan.ExpectedState,
			Temp:          cfg.Watch.TempRange,
		},
	})
	if err != nil {
		log.Fatalw("failed to init services", "err", err)
	}
	apiHandler := handlers.NewHandler(services, log, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// periodic rescan of the live stat log
	go services.Watcher.Run(ctx, cfg.Watch.Interval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Server.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func operators(in []config.Operator) []models.Operator {
	out := make([]models.Operator, 0, len(in))
	for _, op := range in {
		out = append(out, models.Operator{Username: op.Username, PasswordHash: op.PasswordHash})
	}
	return out
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
