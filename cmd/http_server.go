package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/care-management/internal"
	"github.com/frahmantamala/care-management/internal/auth"
	"github.com/frahmantamala/care-management/internal/authz"
	authzpostgres "github.com/frahmantamala/care-management/internal/authz/postgres"
	"github.com/frahmantamala/care-management/internal/contract"
	contractpostgres "github.com/frahmantamala/care-management/internal/contract/postgres"
	"github.com/frahmantamala/care-management/internal/core/events"
	"github.com/frahmantamala/care-management/internal/esign"
	"github.com/frahmantamala/care-management/internal/scheduling"
	schedulingpostgres "github.com/frahmantamala/care-management/internal/scheduling/postgres"
	"github.com/frahmantamala/care-management/internal/sectorhistory"
	sectorhistorypostgres "github.com/frahmantamala/care-management/internal/sectorhistory/postgres"
	"github.com/frahmantamala/care-management/internal/storage"
	"github.com/frahmantamala/care-management/internal/transport/rest"
	"github.com/frahmantamala/care-management/internal/transport/swagger"
	"github.com/frahmantamala/care-management/internal/user"
	userpostgres "github.com/frahmantamala/care-management/internal/user/postgres"
	"github.com/frahmantamala/care-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config          *internal.Config
	DB              *sqlx.DB
	GormDB          *gorm.DB
	Router          *chi.Mux
	AuthHandler     *auth.Handler
	UserHandler     *user.Handler
	ContractHandler *contract.Handler
	WebhookHandler  *contract.WebhookHandler
	StorageClient   *storage.Client
	Logger          *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB,
		deps.AuthHandler, deps.UserHandler, deps.ContractHandler, deps.WebhookHandler,
		deps.Config.Observability.Metrics.Enabled, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.StorageClient.Shutdown()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		lg.Warn("openapi spec validation failed", "error", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over pgx pool: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(events.ContractEnded, func(ctx context.Context, event events.Event) error {
		lg.Info("contract ended", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})

	// authorization engine
	authzRepo := authzpostgres.NewAuthzRepository(gormDB)
	authzService := authz.NewService(authzRepo, authz.DefaultPermissionTable(), lg)

	// authentication
	userRepo := userpostgres.NewUserRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService, authzService)

	// domain services
	userService := user.NewService(userRepo, lg)
	userHandler := user.NewHandler(userService)

	schedulingRepo := schedulingpostgres.NewSchedulingRepository(gormDB, db)
	schedulingService := scheduling.NewService(schedulingRepo, lg)

	sectorHistoryRepo := sectorhistorypostgres.NewSectorHistoryRepository(gormDB)
	sectorHistoryService := sectorhistory.NewService(sectorHistoryRepo, lg)

	esignClient := esign.NewClient(config.ESign, lg)
	storageClient := storage.NewClient(config.Storage, lg)

	contractRepo := contractpostgres.NewContractRepository(gormDB)
	contractService := contract.NewService(
		contractRepo, userService, schedulingService, sectorHistoryService,
		esignClient, storageClient, eventBus, lg)
	contractHandler := contract.NewHandler(contractService)
	webhookHandler := contract.NewWebhookHandler(contractService)

	return &Dependencies{
		Config:          config,
		Logger:          lg,
		DB:              db,
		GormDB:          gormDB,
		Router:          chi.NewRouter(),
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		ContractHandler: contractHandler,
		WebhookHandler:  webhookHandler,
		StorageClient:   storageClient,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
