// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	authHTTP "github.com/openaccel/beamauth/internal/authorization/http"
	authRepository "github.com/openaccel/beamauth/internal/authorization/repository"
	authUsecase "github.com/openaccel/beamauth/internal/authorization/usecase"
	"github.com/openaccel/beamauth/internal/config"
	"github.com/openaccel/beamauth/internal/database"
	directoryRepository "github.com/openaccel/beamauth/internal/directory/repository"
	directoryUsecase "github.com/openaccel/beamauth/internal/directory/usecase"
	"github.com/openaccel/beamauth/internal/http"
	"github.com/openaccel/beamauth/internal/metrics"
	"github.com/openaccel/beamauth/internal/notification"
	"github.com/openaccel/beamauth/internal/scanner"
	verificationHTTP "github.com/openaccel/beamauth/internal/verification/http"
	verificationRepository "github.com/openaccel/beamauth/internal/verification/repository"
	verificationUsecase "github.com/openaccel/beamauth/internal/verification/usecase"
)

// Container holds all application dependencies and provides methods to
// access them. Components are created lazily on first access.
type Container struct {
	config *config.Config

	// lifecycleCtx bounds background goroutines owned by the container,
	// such as the rate limiter cleanup loop. Canceled on Shutdown.
	lifecycleCtx    context.Context
	lifecycleCancel context.CancelFunc

	logger    *slog.Logger
	db        *sql.DB
	txManager database.TxManager

	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	directoryUseCase     directoryUsecase.DirectoryUseCase
	authorizationUseCase authUsecase.AuthorizationUseCase
	revocationEngine     authUsecase.RevocationEngine
	verificationUseCase  verificationUsecase.VerificationUseCase

	dispatcher *notification.Dispatcher
	scanner    *scanner.Scanner

	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                       sync.Mutex
	loggerInit               sync.Once
	dbInit                   sync.Once
	txManagerInit            sync.Once
	metricsProviderInit      sync.Once
	businessMetricsInit      sync.Once
	directoryUseCaseInit     sync.Once
	authorizationUseCaseInit sync.Once
	revocationEngineInit     sync.Once
	verificationUseCaseInit  sync.Once
	dispatcherInit           sync.Once
	scannerInit              sync.Once
	httpServerInit           sync.Once
	metricsServerInit        sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the
// provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		config:          cfg,
		lifecycleCtx:    ctx,
		lifecycleCancel: cancel,
		initErrors:      make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if err, exists := c.initErrors["db"]; exists {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if err, exists := c.initErrors["txManager"]; exists {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the otel/prometheus metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}

		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if err, exists := c.initErrors["metricsProvider"]; exists {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}

		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		businessMetrics, err := metrics.NewBusinessMetrics(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if err, exists := c.initErrors["businessMetrics"]; exists {
		return nil, err
	}
	return c.businessMetrics, nil
}

// DirectoryUseCase returns the staff directory use case.
func (c *Container) DirectoryUseCase() (directoryUsecase.DirectoryUseCase, error) {
	c.directoryUseCaseInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["directoryUseCase"] = fmt.Errorf("failed to get database for directory use case: %w", err)
			return
		}

		c.directoryUseCase = directoryUsecase.NewDirectoryUseCase(
			directoryRepository.NewPostgreSQLStaffRepository(db),
			directoryRepository.NewPostgreSQLWorkgroupRepository(db),
		)
	})
	if err, exists := c.initErrors["directoryUseCase"]; exists {
		return nil, err
	}
	return c.directoryUseCase, nil
}

// AuthorizationUseCase returns the authorization version store use case.
func (c *Container) AuthorizationUseCase() (authUsecase.AuthorizationUseCase, error) {
	c.authorizationUseCaseInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["authorizationUseCase"] = fmt.Errorf("failed to get database for authorization use case: %w", err)
			return
		}

		c.authorizationUseCase = authUsecase.NewAuthorizationUseCase(
			authRepository.NewPostgreSQLAuthorizationRepository(db),
			authRepository.NewPostgreSQLBeamDestinationRepository(db),
		)
	})
	if err, exists := c.initErrors["authorizationUseCase"]; exists {
		return nil, err
	}
	return c.authorizationUseCase, nil
}

// RevocationEngine returns the revocation engine.
func (c *Container) RevocationEngine() (authUsecase.RevocationEngine, error) {
	c.revocationEngineInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["revocationEngine"] = fmt.Errorf("failed to get database for revocation engine: %w", err)
			return
		}

		c.revocationEngine = authUsecase.NewRevocationEngine(
			authRepository.NewPostgreSQLAuthorizationRepository(db),
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["revocationEngine"]; exists {
		return nil, err
	}
	return c.revocationEngine, nil
}

// VerificationUseCase returns the verification registry use case wrapped
// with metrics instrumentation.
func (c *Container) VerificationUseCase() (verificationUsecase.VerificationUseCase, error) {
	c.verificationUseCaseInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["verificationUseCase"] = fmt.Errorf("failed to get database for verification use case: %w", err)
			return
		}

		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["verificationUseCase"] = fmt.Errorf("failed to get tx manager for verification use case: %w", err)
			return
		}

		directory, err := c.DirectoryUseCase()
		if err != nil {
			c.initErrors["verificationUseCase"] = fmt.Errorf("failed to get directory use case for verification use case: %w", err)
			return
		}

		engine, err := c.RevocationEngine()
		if err != nil {
			c.initErrors["verificationUseCase"] = fmt.Errorf("failed to get revocation engine for verification use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["verificationUseCase"] = fmt.Errorf("failed to get business metrics for verification use case: %w", err)
			return
		}

		useCase := verificationUsecase.NewVerificationUseCase(
			verificationRepository.NewPostgreSQLVerificationRepository(db),
			verificationRepository.NewPostgreSQLControlRepository(db),
			verificationRepository.NewPostgreSQLHistoryRepository(db),
			authRepository.NewPostgreSQLBeamDestinationRepository(db),
			directory,
			engine,
			txManager,
			c.config.SystemUsername,
		)

		c.verificationUseCase = verificationUsecase.NewVerificationUseCaseWithMetrics(
			useCase,
			businessMetrics,
		)
	})
	if err, exists := c.initErrors["verificationUseCase"]; exists {
		return nil, err
	}
	return c.verificationUseCase, nil
}

// Dispatcher returns the notification dispatcher.
func (c *Container) Dispatcher() (*notification.Dispatcher, error) {
	c.dispatcherInit.Do(func() {
		directory, err := c.DirectoryUseCase()
		if err != nil {
			c.initErrors["dispatcher"] = fmt.Errorf("failed to get directory use case for dispatcher: %w", err)
			return
		}

		logger := c.Logger()

		var logbook notification.LogbookClient
		if c.config.LogbookHostname != "" {
			logbook = notification.NewHTTPLogbookClient(
				c.config.LogbookHostname,
				splitCSV(c.config.LogbooksCSV),
				logger,
			)
		}

		c.dispatcher = notification.NewDispatcher(
			notification.Config{
				Sender:                    c.config.EmailSender,
				EmailDomain:               c.config.EmailDomain,
				AdminRecipients:           splitCSV(c.config.AdminEmailCSV),
				OpsRecipients:             splitCSV(c.config.OpsEmailCSV),
				DowngradedRecipients:      splitCSV(c.config.DowngradedEmailCSV),
				UpcomingExpirationSubject: c.config.UpcomingExpirationSubject,
				ExpiredSubject:            c.config.ExpiredSubject,
				DowngradedSubject:         c.config.DowngradedSubject,
				ProxyHostname:             c.config.ProxyHostname,
				NotifyGroups:              c.config.NotifyGroupsEnabled,
			},
			notification.NewSMTPEmailSender(
				c.config.SMTPHost,
				c.config.SMTPPort,
				c.config.EmailSender,
				logger,
			),
			logbook,
			directory,
			logger,
		)
	})
	if err, exists := c.initErrors["dispatcher"]; exists {
		return nil, err
	}
	return c.dispatcher, nil
}

// Scanner returns the expiration scanner.
func (c *Container) Scanner() (*scanner.Scanner, error) {
	c.scannerInit.Do(func() {
		authorizationUseCase, err := c.AuthorizationUseCase()
		if err != nil {
			c.initErrors["scanner"] = fmt.Errorf("failed to get authorization use case for scanner: %w", err)
			return
		}

		verificationUseCase, err := c.VerificationUseCase()
		if err != nil {
			c.initErrors["scanner"] = fmt.Errorf("failed to get verification use case for scanner: %w", err)
			return
		}

		engine, err := c.RevocationEngine()
		if err != nil {
			c.initErrors["scanner"] = fmt.Errorf("failed to get revocation engine for scanner: %w", err)
			return
		}

		dispatcher, err := c.Dispatcher()
		if err != nil {
			c.initErrors["scanner"] = fmt.Errorf("failed to get dispatcher for scanner: %w", err)
			return
		}

		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["scanner"] = fmt.Errorf("failed to get tx manager for scanner: %w", err)
			return
		}

		c.scanner = scanner.NewScanner(
			scanner.Config{
				Interval:        c.config.ScanInterval,
				IncludeUpcoming: c.config.ScanIncludeUpcoming,
			},
			authorizationUseCase,
			verificationUseCase,
			engine,
			dispatcher,
			txManager,
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["scanner"]; exists {
		return nil, err
	}
	return c.scanner, nil
}

// HTTPServer returns the operator API server.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if err, exists := c.initErrors["httpServer"]; exists {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}

		if provider == nil {
			return
		}

		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err, exists := c.initErrors["metricsServer"]; exists {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lifecycleCancel()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured logger based on the configured log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if c.config.DBDriver != "postgres" {
		_ = db.Close()
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	return db, nil
}

// initHTTPServer assembles the API router with all handlers and middleware.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	verificationUseCase, err := c.VerificationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get verification use case for http server: %w", err)
	}

	authorizationUseCase, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization use case for http server: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for http server: %w", err)
	}

	expirationScanner, err := c.Scanner()
	if err != nil {
		return nil, fmt.Errorf("failed to get scanner for http server: %w", err)
	}

	routerConfig := http.RouterConfig{
		VerificationHandler: verificationHTTP.NewVerificationHandler(
			verificationUseCase,
			dispatcher,
			logger,
		),
		AuthorizationHandler: authHTTP.NewAuthorizationHandler(
			authorizationUseCase,
			logger,
		),
		ExpirationChecker:   expirationScanner,
		ScanIncludeUpcoming: c.config.ScanIncludeUpcoming,
		CORSEnabled:         c.config.CORSEnabled,
		CORSAllowOrigins:    c.config.CORSAllowOrigins,
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		routerConfig.Middlewares = append(
			routerConfig.Middlewares,
			metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace),
		)
	}

	if c.config.RateLimitEnabled {
		routerConfig.RateLimit = http.ActorRateLimitMiddleware(
			c.lifecycleCtx,
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
			logger,
		)
	}

	return http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger, routerConfig), nil
}

// splitCSV splits a comma-separated list and trims whitespace, dropping
// empty entries.
func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}

	parts := strings.Split(csv, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}
