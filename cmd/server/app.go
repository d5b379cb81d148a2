package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/phrazzld/roadmap-api/internal/deadline"
	"github.com/phrazzld/roadmap-api/internal/events"
	"github.com/phrazzld/roadmap-api/internal/importer"
	"github.com/phrazzld/roadmap-api/internal/job"
	"github.com/phrazzld/roadmap-api/internal/notify"
	"github.com/phrazzld/roadmap-api/internal/platform/postgres"
	"github.com/phrazzld/roadmap-api/internal/service"
	"github.com/phrazzld/roadmap-api/internal/service/auth"
)

// application holds every long-lived component of the server. It is built
// once by newApplication and torn down by shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	clock  clockwork.Clock

	accounts *service.AccountServiceImpl
	tasks    *service.TaskServiceImpl
	catalog  *service.CatalogService
	importer *importer.Importer

	emitter   *events.InMemoryEventEmitter
	hub       *notify.Hub
	scheduler *job.Scheduler
}

// newApplication wires stores, services and background components. Nothing
// is started; Run does that.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sqlx.DB,
	clock clockwork.Clock,
) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db)
	taskStore := postgres.NewPostgresTaskStore(db)
	teamStore := postgres.NewPostgresTeamStore(db)
	notificationStore := postgres.NewPostgresNotificationStore(db)

	jwtService, err := auth.NewJWTService(cfg.Auth, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	admins := auth.NewAdminAllowList(cfg.Auth.AdminEmails)
	passwords := auth.NewBcryptVerifier(cfg.Auth.BcryptCost)

	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		clock:    clock,
		accounts: service.NewAccountService(userStore, db, jwtService, passwords, admins, logger),
		tasks:    service.NewTaskService(taskStore, teamStore, admins, logger),
		catalog:  service.NewCatalogService(teamStore, notificationStore),
		importer: importer.New(db, userStore, teamStore, taskStore, logger),
		emitter:  events.NewInMemoryEventEmitter(logger),
		hub:      notify.NewHub(logger),
	}

	inbox, err := notify.NewInbox(notificationStore, cfg.Notify.NodeID, clock, app.hub, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notification inbox: %w", err)
	}
	app.emitter.RegisterHandler(inbox)

	scanner, err := deadline.NewScanner(taskStore, app.emitter, clock, deadline.Config{
		Lookahead:     time.Duration(cfg.Scheduler.LookaheadMinutes) * time.Minute,
		ReportOverdue: cfg.Scheduler.ReportOverdue,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize deadline scanner: %w", err)
	}

	if cfg.Scheduler.Enabled {
		interval := time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second
		app.scheduler, err = job.NewScheduler(scanner, interval, clock, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
		}
	} else {
		logger.Info("deadline scheduler disabled by configuration")
	}

	logger.Info("application initialized",
		"admin_count", admins.Len(),
		"notify_node_id", cfg.Notify.NodeID)
	return app, nil
}
