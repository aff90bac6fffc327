// Package di provides a dependency injection container for managing service
// lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"ireporter/internal/config"
	"ireporter/internal/database"
	"ireporter/internal/observability"
	"ireporter/internal/serviceinterfaces"
	"ireporter/internal/services"
	"ireporter/internal/storage"
	contextutils "ireporter/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetReportService() (serviceinterfaces.ReportService, error)
	GetUserService() (serviceinterfaces.UserService, error)
	GetEmailService() (serviceinterfaces.EmailService, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	GetUploadsDir() string
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	EnsureAdminUser(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	fileStore     *storage.LocalFileStore
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

var _ ServiceContainerInterface = (*ServiceContainer)(nil)

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapError(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	fileStore, err := storage.NewLocalFileStore(sc.cfg.Uploads.Dir)
	if err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapError(err, "failed to initialize file store")
	}
	sc.fileStore = fileStore

	sc.initializeServices(ctx)

	return nil
}

// initializeServices wires the service graph. Caller holds the lock.
func (sc *ServiceContainer) initializeServices(ctx context.Context) {
	attachmentService := services.NewAttachmentService(sc.fileStore, sc.cfg, sc.logger)
	emailService := services.NewEmailService(sc.cfg, sc.logger)
	reportService := services.NewReportService(sc.db, attachmentService, emailService, sc.logger)
	userService := services.NewUserService(sc.db, sc.logger)

	sc.services["attachment"] = attachmentService
	sc.services["email"] = emailService
	sc.services["report"] = reportService
	sc.services["user"] = userService

	sc.logger.Info(ctx, "Services initialized", map[string]interface{}{
		"email_enabled": emailService.IsEnabled(),
		"uploads_dir":   sc.fileStore.Dir(),
	})
}

// GetService retrieves a service by name
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.WrapErrorf(contextutils.ErrInternalError, "service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetReportService returns the report service
func (sc *ServiceContainer) GetReportService() (serviceinterfaces.ReportService, error) {
	return GetServiceAs[serviceinterfaces.ReportService](sc, "report")
}

// GetUserService returns the user service
func (sc *ServiceContainer) GetUserService() (serviceinterfaces.UserService, error) {
	return GetServiceAs[serviceinterfaces.UserService](sc, "user")
}

// GetEmailService returns the email service
func (sc *ServiceContainer) GetEmailService() (serviceinterfaces.EmailService, error) {
	return GetServiceAs[serviceinterfaces.EmailService](sc, "email")
}

// GetDatabase returns the underlying database handle
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.db
}

// GetConfig returns the application configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the application logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// GetUploadsDir returns the directory attachment files are stored in
func (sc *ServiceContainer) GetUploadsDir() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.fileStore == nil {
		return sc.cfg.Uploads.Dir
	}
	return sc.fileStore.Dir()
}

// EnsureAdminUser creates the configured moderator account if it does not
// exist yet. A container without admin credentials configured is a no-op.
func (sc *ServiceContainer) EnsureAdminUser(ctx context.Context) error {
	if sc.cfg.Server.AdminUsername == "" || sc.cfg.Server.AdminPassword == "" {
		return nil
	}

	userService, err := sc.GetUserService()
	if err != nil {
		return err
	}

	existing, err := userService.GetUserByUsername(ctx, sc.cfg.Server.AdminUsername)
	if err != nil && !errors.Is(err, contextutils.ErrRecordNotFound) {
		return contextutils.WrapError(err, "failed to look up admin user")
	}
	if existing != nil {
		return nil
	}

	created, err := userService.CreateUser(ctx, sc.cfg.Server.AdminUsername, "", sc.cfg.Server.AdminPassword, true)
	if err != nil {
		return contextutils.WrapError(err, "failed to create admin user")
	}

	sc.logger.Info(ctx, "Created admin user", map[string]interface{}{
		"user_id":  created.ID,
		"username": created.Username,
	})
	return nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.cleanup(ctx)
}

// cleanup runs shutdown functions in reverse order. Caller holds the lock.
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var firstErr error
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	sc.shutdownFuncs = nil
	return firstErr
}
