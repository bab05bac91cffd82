// Package app assembles the ingestion pipeline from configuration.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/statline/statline/internal/config"
	"github.com/statline/statline/internal/infrastructure/repository/postgres"
	"github.com/statline/statline/internal/platform/logging"
	"github.com/statline/statline/internal/scrape"
	"github.com/statline/statline/internal/usecase"
)

// Ingestion bundles the wired service with the resources it owns.
type Ingestion struct {
	Service *usecase.IngestionService
	DB      *sqlx.DB
}

func NewIngestion(cfg config.Config, logger *logging.Logger) (*Ingestion, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := scrape.NewFetcher(scrape.FetcherConfig{
		Timeout:                 cfg.FetchTimeout,
		MaxRetries:              cfg.FetchMaxRetries,
		BackoffBase:             cfg.FetchBackoffBase,
		BackoffMax:              cfg.FetchBackoffMax,
		DelayMin:                cfg.FetchDelayMin,
		DelayMax:                cfg.FetchDelayMax,
		BreakerFailureThreshold: cfg.FetchBreakerFailures,
		BreakerOpenTimeout:      cfg.FetchBreakerOpenTimeout,
	}, logger)

	svc := usecase.NewIngestionService(
		fetcher,
		scrape.NewExtractor(),
		postgres.NewTableManager(db, logger),
		postgres.NewLoader(db, logger),
		logger,
	)

	return &Ingestion{Service: svc, DB: db}, nil
}

func (i *Ingestion) Close() error {
	if i.DB == nil {
		return nil
	}
	return i.DB.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}
