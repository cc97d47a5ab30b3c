package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/core/services"
	"github.com/tatenda10/alamait-sub008/internal/handlers"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
	"github.com/tatenda10/alamait-sub008/internal/platform/config"
	"github.com/tatenda10/alamait-sub008/internal/repositories/database/pgsql"
	"github.com/tatenda10/alamait-sub008/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := buildServices(dbPool, cfg)

	rate, err := limiter.NewRateFromFormatted(cfg.WriteRateLimit)
	if err != nil {
		logger.Error("Invalid WRITE_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}
	writeLimiter := limiter.New(memory.NewStore(), rate)

	handlers.RegisterRoutes(r, cfg, serviceContainer, writeLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires the repositories into the service layer.
func buildServices(dbPool *pgxpool.Pool, cfg *config.Config) *portssvc.ServiceContainer {
	repos := pgsql.NewRepositoryProvider(dbPool)

	accountSvc := services.NewAccountService(repos.AccountRepo)
	postingSvc := services.NewPostingService(repos.LedgerRepo, repos.AccountRepo)
	materializerSvc := services.NewMaterializerService(repos.BalanceRepo, repos.StudentBalanceRepo, repos.AccountRepo, cfg.ReceivableAccountCode)
	periodSvc := services.NewPeriodService(repos.PeriodRepo, repos.AccountRepo)
	reconciliationSvc := services.NewReconciliationService(
		repos.LedgerRepo,
		repos.BalanceRepo,
		repos.StudentBalanceRepo,
		repos.ReconciliationRepo,
		repos.PeriodRepo,
		materializerSvc,
		periodSvc,
		cfg.ReconcileEpsilon,
	)
	studentSvc := services.NewStudentLedgerService(repos.LedgerRepo, repos.AccountRepo, repos.StudentBalanceRepo, cfg.ReceivableAccountCode)
	reportingSvc := services.NewReportingService(repos.ReportingRepo, repos.StudentBalanceRepo)

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Posting:        postingSvc,
		Materializer:   materializerSvc,
		Period:         periodSvc,
		Reconciliation: reconciliationSvc,
		StudentLedger:  studentSvc,
		Reporting:      reportingSvc,
	}
}

// runMigrations applies all pending schema migrations using a temporary
// database/sql connection over the pgx stdlib bridge.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied")
	}
	return nil
}
