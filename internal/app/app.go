package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/gridironlab/statline/external/espn"
	"github.com/gridironlab/statline/external/gridsite"
	"github.com/gridironlab/statline/external/nflverse"
	"github.com/gridironlab/statline/internal/config"
	"github.com/gridironlab/statline/internal/domain/roster"
	repocache "github.com/gridironlab/statline/internal/infrastructure/repository/cache"
	"github.com/gridironlab/statline/internal/infrastructure/repository/postgres"
	"github.com/gridironlab/statline/internal/interfaces/httpapi"
	basecache "github.com/gridironlab/statline/internal/platform/cache"
	idgen "github.com/gridironlab/statline/internal/platform/id"
	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/resilience"
	"github.com/gridironlab/statline/internal/usecase"

	_ "github.com/lib/pq"
)

// NewHTTPServer wires repositories, upstream clients, and the ingestion
// services behind the HTTP router. The returned cleanup closes the
// database pool and must run after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	statRepo := postgres.NewStatTableRepository(db, logger.Named("statstore"))
	runRepo := postgres.NewIngestRunRepository(db)

	// The decorator drops cached roster reads on replace, so the sync
	// job and the stat services can share one repository.
	var rosterRepo roster.Repository = postgres.NewRosterRepository(db)
	if cfg.CacheEnabled {
		rosterRepo = repocache.NewRosterRepository(rosterRepo, basecache.NewStore(cfg.CacheTTL))
	}

	espnClient := espn.NewClient(espn.ClientConfig{
		HTTPClient:  &http.Client{Timeout: cfg.ESPNTimeout},
		SiteBaseURL: cfg.ESPNSiteBaseURL,
		WebBaseURL:  cfg.ESPNWebBaseURL,
		CoreBaseURL: cfg.ESPNCoreBaseURL,
		Timeout:     cfg.ESPNTimeout,
		Logger:      logger.Named("espn"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	referenceLoader := nflverse.NewLoader(nflverse.LoaderConfig{
		HTTPClient:       &http.Client{Timeout: cfg.NFLverseTimeout},
		PlayerIDsURL:     cfg.NFLversePlayerIDsURL,
		SnapCountsFormat: cfg.NFLverseSnapCountsFormat,
		Timeout:          cfg.NFLverseTimeout,
		Cache:            basecache.NewStore(cfg.NFLverseCacheTTL),
		Logger:           logger.Named("nflverse"),
	})

	scraper := gridsite.NewScraper(gridsite.ScraperConfig{
		RequestTimeout:    cfg.ScraperRequestTimeout,
		RequestsPerSecond: cfg.ScraperRequestsPerSecond,
		MaxRetries:        cfg.ScraperMaxRetries,
		Logger:            logger.Named("gridsite"),
	})

	fetchSettings := usecase.FetchSettings{
		MaxWorkers:     cfg.FetchMaxWorkers,
		RequestTimeout: cfg.FetchRequestTimeout,
		MaxRetries:     cfg.FetchMaxRetries,
		RetryBackoff:   cfg.FetchRetryBackoff,
	}

	rosterSvc := usecase.NewRosterSyncService(espnClient, rosterRepo, logger)
	seasonSvc := usecase.NewSeasonStatsService(espnClient, rosterRepo, statRepo, fetchSettings, logger)
	gamelogSvc := usecase.NewGamelogService(espnClient, referenceLoader, rosterRepo, statRepo, fetchSettings, logger)
	snapSvc := usecase.NewSnapCountService(referenceLoader, statRepo, logger)
	projectionsSvc := usecase.NewProjectionsService(scraper, statRepo, cfg.ProjectionURLs, logger)

	pipelineSvc := usecase.NewPipelineService(
		rosterSvc,
		seasonSvc,
		gamelogSvc,
		snapSvc,
		projectionsSvc,
		runRepo,
		idgen.NewRandomGenerator(),
		logger,
	)
	dashboardSvc := usecase.NewPipelineDashboardService(runRepo, logger)

	handler := httpapi.NewHandler(pipelineSvc, dashboardSvc, statRepo, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, db.Close, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}
