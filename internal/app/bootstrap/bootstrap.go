package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	sessionservice "unionhub/contexts/identity-access/session-service"
	sessionhash "unionhub/contexts/identity-access/session-service/adapters/hash"
	sessionpostgres "unionhub/contexts/identity-access/session-service/adapters/postgres"
	sessiontoken "unionhub/contexts/identity-access/session-service/adapters/token"
	electionengine "unionhub/contexts/student-union/election-engine"
	electionpostgres "unionhub/contexts/student-union/election-engine/adapters/postgres"
	electionworkers "unionhub/contexts/student-union/election-engine/application/workers"
	membershipledger "unionhub/contexts/student-union/membership-ledger"
	ledgerpostgres "unionhub/contexts/student-union/membership-ledger/adapters/postgres"
	ledgerworkers "unionhub/contexts/student-union/membership-ledger/application/workers"
	"unionhub/internal/platform/config"
	"unionhub/internal/platform/db"
	"unionhub/internal/platform/httpserver"
	"unionhub/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	electionRelay electionworkers.OutboxRelay
	ledgerRelay   ledgerworkers.OutboxRelay
	scheduler     electionworkers.ScheduleRunner
	relayEnabled  bool
	pollInterval  time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	sessionRepo := sessionpostgres.NewRepository(pg.DB, logger)
	sessionModule := sessionservice.NewModule(sessionservice.Dependencies{
		Users:      sessionRepo,
		Sessions:   sessionRepo,
		Hasher:     sessionhash.BcryptHasher{},
		Tokens:     sessiontoken.NewJWTCodec(cfg.JWTSecret),
		Clock:      sessionpostgres.SystemClock{},
		IDGen:      sessionpostgres.UUIDGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	})

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := membershipledger.NewModule(membershipledger.Dependencies{
		Ledger:       ledgerRepo,
		Capabilities: sessionCapabilities{accounts: sessionModule.Validate},
		Outbox:       ledgerRepo,
		Clock:        ledgerpostgres.SystemClock{},
		IDGen:        ledgerpostgres.UUIDGenerator{},
		Logger:       logger,
	})

	electionRepo := electionpostgres.NewRepository(pg.DB, logger)
	electionModule := electionengine.NewModule(electionengine.Dependencies{
		Elections: electionRepo,
		Ballots:   electionRepo,
		Eligibility: rosterEligibility{
			roster:   ledgerModule.Roster,
			accounts: sessionModule.Validate,
		},
		Clubs:  rosterDirectory{roster: ledgerModule.Roster},
		Outbox: electionRepo,
		Clock:  electionpostgres.SystemClock{},
		IDGen:  electionpostgres.UUIDGenerator{},
		Logger: logger,
	})

	server := httpserver.New(electionModule, ledgerModule, sessionModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	electionRepo := electionpostgres.NewRepository(pg.DB, logger)
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)

	scheduler := electionworkers.ScheduleRunner{
		Elections: electionRepo,
		Lifecycle: electionengine.NewModule(electionengine.Dependencies{
			Elections: electionRepo,
			Ballots:   electionRepo,
			Outbox:    electionRepo,
			Clock:     electionpostgres.SystemClock{},
			IDGen:     electionpostgres.UUIDGenerator{},
			Logger:    logger,
		}).Lifecycle,
		Clock:    electionpostgres.SystemClock{},
		Disabled: !cfg.EnableElectionScheduler,
		Logger:   logger,
	}

	return &WorkerApp{
		postgres: pg,
		electionRelay: electionworkers.OutboxRelay{
			Outbox:    electionRepo,
			Publisher: bus,
			Clock:     electionpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		ledgerRelay: ledgerworkers.OutboxRelay{
			Outbox:    ledgerRepo,
			Publisher: bus,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		scheduler:    scheduler,
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.scheduler.RunOnce(ctx); err != nil {
			return err
		}
		if w.relayEnabled {
			if err := w.electionRelay.RunOnce(ctx); err != nil {
				return err
			}
			if err := w.ledgerRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
