package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bikelogic/garage-service/internal/adapter/gemini"
	"github.com/bikelogic/garage-service/internal/adapter/handler/http"
	"github.com/bikelogic/garage-service/internal/adapter/logger"
	"github.com/bikelogic/garage-service/internal/adapter/postgres"
	"github.com/bikelogic/garage-service/internal/adapter/prometheus"
	"github.com/bikelogic/garage-service/internal/adapter/redis"
	"github.com/bikelogic/garage-service/internal/adapter/strava"
	"github.com/bikelogic/garage-service/internal/config"
	"github.com/bikelogic/garage-service/internal/core/ports"
	"github.com/bikelogic/garage-service/internal/core/services"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose"
	redisClient "github.com/redis/go-redis/v9"
)

type App struct {
	Config       *config.Container
	Logger       ports.LoggerPort
	DB           *sql.DB
	RedisClient  *redisClient.Client
	RedisAdapter ports.CachePort
	HTTPRouter   *http.Router

	syncService *services.SyncService
	stopSync    chan struct{}
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	})

	// Set redis
	redisConn := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisConn.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	cacheAdapter := redis.NewRedisAdapter(redisConn)

	// Connect DB. The remote store is optional: any failure here drops
	// the app into cache-only mode instead of aborting startup.
	var db *sql.DB
	var remote *services.RemoteStores
	if cfg.DB.Configured() {
		db, remote = connectRemote(cfg, loggerAdapter)
	} else {
		loggerAdapter.Info("Remote store not configured, running cache-only", nil)
	}

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Core services
	gateway := services.NewPersistenceGateway(remote, cacheAdapter, loggerAdapter, validate, cfg.App.OwnerID)
	maintenanceService := services.NewMaintenanceService(gateway, loggerAdapter)

	stravaAdapter := strava.NewClient(cfg.Strava.ClientID, cfg.Strava.ClientSecret, cfg.Strava.RedirectURI)
	tokenManager := services.NewTokenManager(gateway, stravaAdapter, loggerAdapter)
	syncService := services.NewSyncService(gateway, tokenManager, stravaAdapter, loggerAdapter)

	extractor := gemini.NewExtractor(cfg.Gemini.APIKey)
	extractionService := services.NewExtractionService(extractor, loggerAdapter)

	// HTTP Handlers
	tokenService := http.NewJWTTokenService(cfg.Token.Secret, loggerAdapter)
	bikeHandler := http.NewBikeHandler(gateway, maintenanceService, extractionService, loggerAdapter, metrics)
	maintenanceHandler := http.NewMaintenanceHandler(gateway, maintenanceService, loggerAdapter, metrics)
	wishlistHandler := http.NewWishlistHandler(gateway, loggerAdapter, metrics)
	stravaHandler := http.NewStravaHandler(tokenManager, syncService, stravaAdapter, loggerAdapter, metrics)
	aiHandler := http.NewAIHandler(extractionService, loggerAdapter, metrics)

	// Init HTTP router
	router, err := http.NewRouter(
		cfg.HTTP,
		tokenService,
		cfg.Token.Secret != "",
		cfg.App.OwnerID,
		bikeHandler,
		maintenanceHandler,
		wishlistHandler,
		stravaHandler,
		aiHandler,
	)
	if err != nil {
		if db != nil {
			db.Close()
		}
		redisConn.Close()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       loggerAdapter,
		DB:           db,
		RedisClient:  redisConn,
		RedisAdapter: cacheAdapter,
		HTTPRouter:   router,
		syncService:  syncService,
		stopSync:     make(chan struct{}),
	}, nil
}

// connectRemote opens, pings and migrates the remote store. Both return
// values are nil when any step fails.
func connectRemote(cfg *config.Container, log ports.LoggerPort) (*sql.DB, *services.RemoteStores) {
	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		log.Warn("Remote store unavailable, running cache-only", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}
	if err := db.Ping(); err != nil {
		log.Warn("Remote store unreachable, running cache-only", map[string]interface{}{
			"error": err.Error(),
		})
		db.Close()
		return nil, nil
	}
	if err := goose.Up(db, "./internal/adapter/postgres/migrations"); err != nil {
		log.Warn("Remote store migration failed, running cache-only", map[string]interface{}{
			"error": err.Error(),
		})
		db.Close()
		return nil, nil
	}

	return db, &services.RemoteStores{
		Bikes:       postgres.NewBikeRepository(db),
		Maintenance: postgres.NewMaintenanceRepository(db),
		Wishlist:    postgres.NewWishlistRepository(db),
		Settings:    postgres.NewSettingsRepository(db),
	}
}

// Runs all services
func (a *App) Run() error {
	a.startBackgroundSync()

	listenAddr := fmt.Sprintf("%s:%s", a.Config.HTTP.URL, a.Config.HTTP.Port)
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": listenAddr,
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// startBackgroundSync runs the startup gear sync and, when an interval
// is configured, the periodic one. Sync is best-effort so neither can
// fail the app.
func (a *App) startBackgroundSync() {
	if a.Config.Sync.OnStart {
		go a.syncService.SyncLinkedGear(context.Background())
	}

	if a.Config.Sync.IntervalMinutes <= 0 {
		return
	}
	interval := time.Duration(a.Config.Sync.IntervalMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.syncService.SyncLinkedGear(context.Background())
			case <-a.stopSync:
				return
			}
		}
	}()
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	close(a.stopSync)

	// Close database
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Database close error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Close Redis
	if err := a.RedisClient.Close(); err != nil {
		a.Logger.Error("Redis close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.Logger.Info("Application stopped successfully", nil)
	return nil
}
