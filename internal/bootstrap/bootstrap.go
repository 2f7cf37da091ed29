// Package bootstrap wires configuration, storage, providers and HTTP handlers.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/educareway/internal/app/controllers"
	appMigrations "github.com/yigit/educareway/internal/app/migrations"
	appRepos "github.com/yigit/educareway/internal/app/repositories"
	appRoutes "github.com/yigit/educareway/internal/app/routes"
	appServices "github.com/yigit/educareway/internal/app/services"
	"github.com/yigit/educareway/internal/config"
	"github.com/yigit/educareway/internal/db"
	appMiddleware "github.com/yigit/educareway/internal/middleware"
	"github.com/yigit/educareway/internal/pkg/filestorage"
	"github.com/yigit/educareway/internal/pkg/firebase"
	"github.com/yigit/educareway/internal/pkg/helpers"
	"github.com/yigit/educareway/internal/pkg/identity"
	"github.com/yigit/educareway/internal/pkg/logger"
	"github.com/yigit/educareway/internal/pkg/push"
	"github.com/yigit/educareway/internal/seed"
)

// DefaultConfigPath is used when no path is given on the command line
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Stores groups the repositories the services depend on
type Stores struct {
	Users     appRepos.IUserRepository
	Courses   appRepos.ICourseRepository
	Semesters appRepos.ISemesterRepository
	Subjects  appRepos.ISubjectRepository
	Resources appRepos.IResourceRepository
}

// PostgresStores builds the PostgreSQL repositories on top of q
func PostgresStores(q appRepos.Querier) Stores {
	repos := appRepos.NewRepositories(q)
	return Stores{
		Users:     repos.UserRepository,
		Courses:   repos.CourseRepository,
		Semesters: repos.SemesterRepository,
		Subjects:  repos.SubjectRepository,
		Resources: repos.ResourceRepository,
	}
}

// Providers are the external identity and push services
type Providers struct {
	Verifier  identity.Verifier
	Messenger push.Messenger
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Stores Stores

	AuthService         appServices.AuthService
	UserService         appServices.UserService
	CourseService       appServices.CourseService
	SemesterService     appServices.SemesterService
	SubjectService      appServices.SubjectService
	ResourceService     appServices.ResourceService
	NotificationService appServices.NotificationService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: cfg.Logging.Format == "text",
	})

	lgr := logger.Base()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the pending SQL migrations.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	dir := cfg.Database.MigrationsDir
	if _, err := os.Stat(dir); err != nil {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	applied, err := appMigrations.NewMigrator(database.Pool, lgr).MigrateFromDirectory(ctx, dir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Strs("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects, migrates and, when configured, seeds the catalog.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if cfg.Seed.OnStartup {
		catalog, err := seed.LoadCatalog(cfg.Seed.CatalogFile)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to load seed catalog, proceeding anyway...")
		} else if _, err := seed.RunInTransaction(ctx, database, catalog, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to seed catalog, proceeding anyway...")
		}
	}

	return database, nil
}

// NewProviders selects Firebase when it is enabled and the local token
// issuer otherwise. Push delivery falls back to a logging messenger whenever
// Firebase or notifications are disabled.
func NewProviders(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Providers, error) {
	if !cfg.Firebase.Enabled {
		lgr.Warn().Msg("Firebase disabled, verifying locally issued development tokens")
		return &Providers{
			Verifier:  NewDevVerifier(cfg),
			Messenger: push.NewNoopMessenger(lgr),
		}, nil
	}

	clients, err := firebase.NewClients(ctx, firebase.Config{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize Firebase")
		return nil, err
	}

	providers := &Providers{Verifier: identity.NewFirebaseVerifier(clients.Auth)}
	if cfg.Notifications.Enabled {
		providers.Messenger = clients.Messaging
	} else {
		providers.Messenger = push.NewNoopMessenger(lgr)
	}
	lgr.Info().Str("projectID", cfg.Firebase.ProjectID).Bool("notifications", cfg.Notifications.Enabled).Msg("Firebase initialized")
	return providers, nil
}

// NewDevVerifier builds the HS256 verifier from the dev_auth section
func NewDevVerifier(cfg *config.Config) *identity.DevVerifier {
	return identity.NewDevVerifier(identity.DevConfig{
		SecretKey:   cfg.DevAuth.Secret,
		TokenIssuer: cfg.DevAuth.Issuer,
		TokenTTL:    helpers.ParseDuration(cfg.DevAuth.TTL, 24*time.Hour),
	})
}

// NewNotificationService builds the push fan-out service
func NewNotificationService(cfg *config.Config, users appRepos.IUserRepository, messenger push.Messenger, lgr zerolog.Logger) appServices.NotificationService {
	return appServices.NewNotificationService(users, messenger, cfg.Notifications.BatchSize, lgr)
}

// BuildDependencies initializes services, controllers and middleware.
// pinger backs the health endpoint and may be nil.
func BuildDependencies(cfg *config.Config, stores Stores, providers *Providers, pinger appControllers.Pinger, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Stores: stores, Logger: lgr}

	notificationTimeout := helpers.ParseDuration(cfg.Notifications.Timeout, 30*time.Second)
	deps.NotificationService = NewNotificationService(cfg, stores.Users, providers.Messenger, lgr)

	var broadcasts appServices.NotificationService
	if cfg.Notifications.Enabled {
		broadcasts = deps.NotificationService
	}

	deps.AuthService = appServices.NewAuthService(stores.Users, broadcasts, appServices.AuthOptions{
		WelcomeDelay:        helpers.ParseDuration(cfg.Notifications.WelcomeDelay, 2*time.Second),
		NotificationTimeout: notificationTimeout,
	}, lgr)
	deps.UserService = appServices.NewUserService(stores.Users, lgr)
	deps.CourseService = appServices.NewCourseService(stores.Courses, stores.Semesters, stores.Subjects, lgr)
	deps.SemesterService = appServices.NewSemesterService(stores.Courses, stores.Semesters, lgr)
	deps.SubjectService = appServices.NewSubjectService(stores.Courses, stores.Semesters, stores.Subjects, stores.Resources, lgr)
	deps.ResourceService = appServices.NewResourceService(
		stores.Resources,
		stores.Subjects,
		filestorage.NewMemoryReader(cfg.Server.MaxUploadSize),
		broadcasts,
		appServices.ResourceOptions{NotificationTimeout: notificationTimeout},
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(providers.Verifier, stores.Users, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:     appControllers.NewAuthController(deps.AuthService, lgr),
		Course:   appControllers.NewCourseController(deps.CourseService),
		Semester: appControllers.NewSemesterController(deps.SemesterService),
		Subject:  appControllers.NewSubjectController(deps.SubjectService),
		Resource: appControllers.NewResourceController(deps.ResourceService, cfg.Server.MaxUploadSize, lgr),
		Health:   appControllers.NewHealthController(pinger, lgr),
	}
	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadSize
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(lgr),
		appMiddleware.RequestLogger(),
		appMiddleware.CORS(cfg.AllowedOrigins()),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router, nil
}
