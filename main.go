package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/ekaya-inc/recon-engine/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/recon-engine/pkg/adapters/datasource/mssql"
	_ "github.com/ekaya-inc/recon-engine/pkg/adapters/datasource/postgres"
	"github.com/ekaya-inc/recon-engine/pkg/config"
	"github.com/ekaya-inc/recon-engine/pkg/database"
	"github.com/ekaya-inc/recon-engine/pkg/handlers"
	"github.com/ekaya-inc/recon-engine/pkg/logging"
	"github.com/ekaya-inc/recon-engine/pkg/middleware"
	"github.com/ekaya-inc/recon-engine/pkg/repositories"
	"github.com/ekaya-inc/recon-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	jobPath := flag.String("job", "", "run a single reconciliation job file and exit")
	flag.Parse()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var db *database.DB
	var results repositories.ResultsRepository
	if cfg.Results.Enabled() {
		db, err = connectResultsStore(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect results store",
				zap.String("error", logging.SanitizeError(err)))
		}
		defer db.Close()
		results = repositories.NewResultsRepository(db)
	} else {
		logger.Info("No results store configured, runs will not be persisted")
	}

	factory := datasource.NewExtractorFactory(logger)
	svc := services.NewReconcileService(factory, results, logger)

	if *jobPath != "" {
		if err := runJob(ctx, svc, cfg, *jobPath); err != nil {
			logger.Fatal("Job failed", zap.String("job", *jobPath), zap.Error(err))
		}
		return
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewReconcileHandler(svc, results, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting recon-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, middleware.RequestLogger(logger)(mux)); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// runJob executes one job document, prints the text report, and returns an
// error when the run itself could not complete. A completed run with failing
// columns exits non-zero so CI pipelines can gate on it.
func runJob(ctx context.Context, svc *services.ReconcileService, cfg *config.Config, path string) error {
	job, err := config.LoadJobSpec(path)
	if err != nil {
		return err
	}
	job.ApplyDefaults(cfg.Validation)

	run, err := svc.Run(ctx, job)
	if err != nil {
		return err
	}

	fmt.Print(services.RenderText(run))

	if run.Summary.FailCount > 0 {
		os.Exit(1)
	}
	return nil
}

func connectResultsStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	connStr := cfg.Results.ConnectionString()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Results.MaxConnections,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, cfg.Results.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("Results store ready",
		zap.String("host", cfg.Results.Host),
		zap.String("database", cfg.Results.Database))
	return db, nil
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
