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

	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/audit"
	auditPostgres "github.com/radityasurya/pharmacy-network/internal/audit/postgres"
	"github.com/radityasurya/pharmacy-network/internal/channel"
	channelPostgres "github.com/radityasurya/pharmacy-network/internal/channel/postgres"
	"github.com/radityasurya/pharmacy-network/internal/message"
	messagePostgres "github.com/radityasurya/pharmacy-network/internal/message/postgres"
	"github.com/radityasurya/pharmacy-network/internal/permission"
	permissionPostgres "github.com/radityasurya/pharmacy-network/internal/permission/postgres"
	"github.com/radityasurya/pharmacy-network/internal/settings"
	settingsPostgres "github.com/radityasurya/pharmacy-network/internal/settings/postgres"
	"github.com/radityasurya/pharmacy-network/internal/tenant"
	tenantPostgres "github.com/radityasurya/pharmacy-network/internal/tenant/postgres"
	"github.com/radityasurya/pharmacy-network/internal/transport"
	"github.com/radityasurya/pharmacy-network/internal/transport/rest"
	"github.com/radityasurya/pharmacy-network/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config, deps.Handlers, deps.Logger)

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

	logger.Init(config.Observability.Logging.Level)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	baseHandler := transport.NewBaseHandler(log)

	// Repositories
	auditRepo := auditPostgres.NewAuditRepository(gormDB)
	channelRepo := channelPostgres.NewChannelRepository(gormDB)
	grantRepo := permissionPostgres.NewGrantRepository(gormDB)
	messageRepo := messagePostgres.NewMessageRepository(gormDB)
	tenantRepo := tenantPostgres.NewTenantRepository(gormDB)
	settingsRepo := settingsPostgres.NewSettingsRepository(gormDB)

	// Services
	auditService := audit.NewService(auditRepo, log)
	escalator := audit.NewSecurityEscalator(auditRepo, log,
		config.Gateway.RejectionAlertRate, config.Gateway.RejectionAlertBurst)
	settingsService := settings.NewService(settingsRepo, log)
	tenantService := tenant.NewService(tenantRepo, log)
	channelService := channel.NewService(channelRepo, settingsService, auditService, log)
	permissionService := permission.NewService(grantRepo, tenantService, log)
	messageService := message.NewService(messageRepo, channelService,
		permissionService, tenantService, settingsService, escalator, log)

	handlers := rest.Handlers{
		Channel:    channel.NewHandler(baseHandler, channelService),
		Permission: permission.NewHandler(baseHandler, permissionService, channelService),
		Message:    message.NewHandler(baseHandler, messageService),
		Audit:      audit.NewHandler(baseHandler, auditService),
		Tenant:     tenant.NewHandler(baseHandler, tenantService),
		Settings:   settings.NewHandler(baseHandler, settingsService),
	}

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
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

// initGorm opens the ORM over the already-pooled pgx connection so both
// layers share one pool and one health check.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
}
