package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/wielerspel/peloton-api/internal/config"
	"github.com/wielerspel/peloton-api/internal/domain/activity"
	"github.com/wielerspel/peloton-api/internal/domain/baseline"
	"github.com/wielerspel/peloton-api/internal/domain/calclog"
	"github.com/wielerspel/peloton-api/internal/domain/game"
	"github.com/wielerspel/peloton-api/internal/domain/participant"
	"github.com/wielerspel/peloton-api/internal/domain/result"
	"github.com/wielerspel/peloton-api/internal/domain/roster"
	"github.com/wielerspel/peloton-api/internal/domain/season"
	"github.com/wielerspel/peloton-api/internal/infrastructure/jobqueue"
	"github.com/wielerspel/peloton-api/internal/infrastructure/notifier"
	"github.com/wielerspel/peloton-api/internal/infrastructure/repository/memory"
	"github.com/wielerspel/peloton-api/internal/infrastructure/repository/postgres"
	"github.com/wielerspel/peloton-api/internal/interfaces/httpapi"
	"github.com/wielerspel/peloton-api/internal/platform/background"
	"github.com/wielerspel/peloton-api/internal/platform/cache"
	idgen "github.com/wielerspel/peloton-api/internal/platform/id"
	"github.com/wielerspel/peloton-api/internal/platform/logging"
	"github.com/wielerspel/peloton-api/internal/platform/resilience"
	"github.com/wielerspel/peloton-api/internal/usecase"
)

type repositories struct {
	results      result.Repository
	games        game.Repository
	participants participant.Repository
	rosters      roster.Repository
	logs         calclog.Repository
	seasons      season.Repository
	baselines    baseline.Repository
	activities   activity.Repository
}

// App owns the HTTP server plus everything that needs an orderly shutdown.
type App struct {
	Server *http.Server
	Runner *background.Runner

	db     *sqlx.DB
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	runner := background.NewRunner(logger)

	var db *sqlx.DB
	var repos repositories
	if cfg.DatabaseURL == "" {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("DATABASE_URL is required outside dev")
		}
		logger.Warn("no DATABASE_URL configured, using in-memory repositories")
		repos = newMemoryRepositories()
	} else {
		var err error
		db, err = openDatabase(cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repos = newPostgresRepositories(db)
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	seasonSvc := usecase.NewSeasonService(repos.seasons, store, logger)
	marginalSvc := usecase.NewMarginalGainsService(
		repos.games, repos.participants, repos.rosters,
		repos.baselines, seasonSvc, logger,
	)
	gameSvc := usecase.NewGameService(repos.games, repos.participants, repos.rosters, logger)

	var adminNotifier usecase.AdminNotifier
	if cfg.NotifierEnabled {
		webhook, err := notifier.NewWebhook(notifier.WebhookConfig{
			Endpoint:       cfg.NotifierEndpoint,
			Token:          cfg.NotifierToken,
			Timeout:        cfg.NotifierTimeout,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build admin notifier: %w", err)
		}
		adminNotifier = webhook
	}

	var rescraper usecase.RescrapePublisher
	if cfg.RescrapeEnabled {
		publisher, err := jobqueue.NewRescrapePublisher(jobqueue.RescrapePublisherConfig{
			BaseURL:        cfg.RescrapeBaseURL,
			Token:          cfg.InternalJobToken,
			Workers:        cfg.RescrapeWorkers,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build rescrape publisher: %w", err)
		}
		rescraper = publisher
	}

	calcSvc := usecase.NewCalculationService(usecase.CalculationServiceDeps{
		Results:      repos.results,
		Games:        repos.games,
		Participants: repos.participants,
		Rosters:      repos.rosters,
		Logs:         repos.logs,
		Activities:   repos.activities,
		Season:       seasonSvc,
		Marginal:     marginalSvc,
		Rescraper:    rescraper,
		Notifier:     adminNotifier,
		Runner:       runner,
		IDGenerator:  idgen.NewRandomGenerator(),
		Logger:       logger,
		Cooldown:     cfg.CalculationCooldown,
		DevMode:      cfg.IsDev(),
	})

	handler := httpapi.NewHandler(calcSvc, gameSvc, seasonSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.MetricsEnabled, cfg.CORSAllowOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server: server,
		Runner: runner,
		db:     db,
		logger: logger,
	}, nil
}

// Shutdown stops the HTTP server, waits for in-flight background work, and
// closes the database pool.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.Server.Shutdown(ctx); err != nil {
		return err
	}
	a.Runner.Wait()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}
	return nil
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DatabaseURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DatabaseURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func newPostgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		results:      postgres.NewResultRepository(db),
		games:        postgres.NewGameRepository(db),
		participants: postgres.NewParticipantRepository(db),
		rosters:      postgres.NewRosterRepository(db),
		logs:         postgres.NewCalcLogRepository(db),
		seasons:      postgres.NewSeasonRepository(db),
		baselines:    postgres.NewBaselineRepository(db),
		activities:   postgres.NewActivityRepository(db),
	}
}

func newMemoryRepositories() repositories {
	return repositories{
		results:      memory.NewResultRepository(nil),
		games:        memory.NewGameRepository(nil),
		participants: memory.NewParticipantRepository(nil),
		rosters:      memory.NewRosterRepository(nil),
		logs:         memory.NewCalcLogRepository(),
		seasons:      memory.NewSeasonRepository(),
		baselines:    memory.NewBaselineRepository(nil),
		activities:   memory.NewActivityRepository(),
	}
}
