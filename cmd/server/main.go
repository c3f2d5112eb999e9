package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"greencoin.backend/internal/config"
	"greencoin.backend/internal/domain/authz"
	"greencoin.backend/internal/domain/entities"
	"greencoin.backend/internal/infrastructure/datasources/database"
	"greencoin.backend/internal/infrastructure/geo"
	"greencoin.backend/internal/infrastructure/identity"
	"greencoin.backend/internal/infrastructure/jobs"
	"greencoin.backend/internal/infrastructure/notifier"
	"greencoin.backend/internal/infrastructure/repositories"
	"greencoin.backend/internal/interfaces/http/handlers"
	"greencoin.backend/internal/interfaces/http/middleware"
	"greencoin.backend/internal/usecases"
	"greencoin.backend/pkg/jwt"
	"greencoin.backend/pkg/logger"
	"greencoin.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv       = godotenv.Load
	loadCfg          = config.Load
	initLog          = logger.Init
	initRedis        = redis.Init
	openDB           = database.Open
	newAuthenticator = buildAuthenticator
	connectNATS      = notifier.ConnectNATS
	runServer        = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB         = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	shutdownContext  = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	ctx, stop := shutdownContext()
	defer stop()

	if cfg.Redis.Enabled {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver == "sqlite" {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	authenticator, err := newAuthenticator(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}

	a, err := buildApp(ctx, cfg, db, sqlDB, authenticator)
	if err != nil {
		return err
	}
	defer a.close()

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	if cfg.Jobs.ReconcileEnabled {
		reconcileJob := jobs.NewLedgerReconcileJob(a.coins, cfg.Jobs.ReconcileSchedule, cfg.Jobs.ReconcileBatchSize)
		go func() {
			if err := reconcileJob.Start(jobCtx); err != nil {
				logger.Error(jobCtx, "Ledger reconcile job failed", zap.Error(err))
			}
		}()
	}

	for _, route := range a.router.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "GreenCoin backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "/api/v1"),
	)
	return serve(ctx, srv, cancelJobs)
}

type app struct {
	router  *gin.Engine
	coins   *usecases.CoinUsecase
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires repositories, sinks, usecases and routes
func buildApp(ctx context.Context, cfg *config.Config, db *gorm.DB, sqlDB *sql.DB, authenticator middleware.Authenticator) (*app, error) {
	a := &app{}

	userRepo := repositories.NewUserRepository(db)
	whitelistRepo := repositories.NewWhitelistRepository(db)
	reportRepo := repositories.NewWasteReportRepository(db)
	txRepo := repositories.NewCoinTransactionRepository(db)
	uow := repositories.NewUnitOfWork(db)

	hub := notifier.NewHub(cfg.Server.AllowedOrigins)
	a.closers = append(a.closers, hub.Close)
	sink := notifier.NewMulti(hub)
	if cfg.NATS.URL != "" {
		nc, err := connectNATS(cfg.NATS.URL, cfg.NATS.ClientName, cfg.NATS.SubjectPrefix)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, nc.Close)
		sink = notifier.NewMulti(hub, nc)
		logger.Info(ctx, "NATS notifier connected", zap.String("url", cfg.NATS.URL))
	}

	geoIndex := buildGeoIndex(ctx, cfg, reportRepo)

	userUsecase := usecases.NewUserUsecase(userRepo, whitelistRepo)
	a.coins = usecases.NewCoinUsecase(uow, userRepo, txRepo, sink)
	reportUsecase := usecases.NewReportUsecase(uow, reportRepo, userRepo, a.coins, geoIndex, sink, usecases.ReportConfig{
		CoinsPerReport:           cfg.Reports.CoinsPerReport,
		DefaultRadiusKm:          cfg.Reports.NearbyRadiusKm,
		CompleteRequiresClaimant: cfg.Reports.CompleteRequiresClaimant,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerOpsRoutes(r, handlers.NewHealthHandler(healthChecks(cfg, sqlDB)))
	registerAPIV1Routes(r, routeDeps{
		userHandler:    handlers.NewUserHandler(userUsecase),
		reportHandler:  handlers.NewReportHandler(reportUsecase),
		coinHandler:    handlers.NewCoinHandler(a.coins),
		wsHandler:      handlers.NewWSHandler(hub),
		authMiddleware: middleware.AuthMiddleware(authenticator, userUsecase),
		wsAuth:         middleware.AuthMiddleware(authenticator, userUsecase, middleware.AllowQueryToken()),
		claimLimiter:   middleware.NewRateLimiter(cfg.RateLimit.ClaimsPerMinute, cfg.RateLimit.Burst).Handler(),
		idempotency:    idempotencyMiddleware(cfg),
		policy:         authz.DefaultPolicy(),
	})
	a.router = r
	return a, nil
}

func serve(ctx context.Context, srv *http.Server, stopJobs context.CancelFunc) error {
	errCh := make(chan error, 1)
	go func() { errCh <- runServer(srv) }()

	select {
	case err := <-errCh:
		stopJobs()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down server")
	stopJobs()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func buildAuthenticator(ctx context.Context, cfg config.AuthConfig) (middleware.Authenticator, error) {
	if cfg.Mode == config.AuthModeLocal {
		return identity.NewLocalAuthenticator(jwt.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)), nil
	}
	auth, err := identity.NewFirebaseAuthenticator(ctx, cfg.FirebaseProjectID)
	if err != nil {
		return nil, err
	}
	return auth, nil
}

// buildGeoIndex seeds the Redis index from the OPEN reports. Without Redis,
// or when seeding fails, nearby search reads the database.
func buildGeoIndex(ctx context.Context, cfg *config.Config, reports *repositories.WasteReportRepository) usecases.GeoIndex {
	sqlIndex := geo.NewSQLIndex(reports)
	if !cfg.Redis.Enabled {
		return sqlIndex
	}

	open, err := reports.ListByStatus(ctx, entities.ReportStatusOpen)
	if err == nil {
		index := geo.NewRedisIndex(redis.GetClient(), cfg.Redis.GeoKey).WithPolarFallback(reports)
		if err = index.Rebuild(ctx, open); err == nil {
			logger.Info(ctx, "Geo index rebuilt", zap.Int("open_reports", len(open)))
			return index
		}
	}
	logger.Warn(ctx, "Falling back to SQL geo index", zap.Error(err))
	return sqlIndex
}

func idempotencyMiddleware(cfg *config.Config) gin.HandlerFunc {
	if !cfg.Redis.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.IdempotencyMiddleware()
}

func healthChecks(cfg *config.Config, sqlDB *sql.DB) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{
		"database": sqlDB.PingContext,
	}
	if cfg.Redis.Enabled {
		checks["redis"] = func(ctx context.Context) error {
			return redis.GetClient().Ping(ctx).Err()
		}
	}
	return checks
}
