package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evreserve/internal/auth"
	"evreserve/internal/config"
	"evreserve/internal/db"
	httpserver "evreserve/internal/http"
	"evreserve/internal/http/handlers"
	"evreserve/internal/http/middleware"
	redisstore "evreserve/internal/redis"
	"evreserve/internal/repository"
	"evreserve/internal/service"
	"evreserve/internal/timeutil"
	"evreserve/internal/ws"
)

// App wires the reservation service dependencies.
type App struct {
	server      *httpserver.Server
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	normalizer, err := timeutil.NewNormalizer(cfg.Business.Timezone)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var (
		redisClient *redis.Client
		activeStore service.ActiveCache
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		activeStore = redisstore.NewActiveStore(redisClient, cfg.ActiveCacheTTL())
	}

	hub := ws.NewHub(30*time.Second, logger)

	reservationRepo := repository.NewReservationRepository(sqlDB, cfg.LockTimeout())
	resourceRepo := repository.NewResourceRepository(sqlDB)

	reservationsService := service.NewReservationsService(
		reservationRepo, resourceRepo, activeStore, hub, normalizer, logger,
	)

	if err := reservationsService.SeedResources(context.Background(), cfg.Resources.Seed); err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		sqlDB.Close()
		return nil, err
	}

	tokens := auth.NewTokenService(cfg.Admin.JWTSecret, cfg.AdminTokenTTL())
	admin := auth.NewAdmin(cfg.Admin.Email, cfg.Admin.PasswordHash, tokens)

	reservationsHandler := handlers.NewReservationsHandler(reservationsService, normalizer)
	adminHandler := handlers.NewAdminHandler(reservationsService, admin, logger)

	routes := httpserver.Routes{
		CreateReservation: reservationsHandler.HandleCreate,
		ListByDate:        reservationsHandler.HandleListByDate,
		ListForOwner:      reservationsHandler.HandleListForOwner,
		ActiveReservation: reservationsHandler.HandleActive,
		DeleteForOwner:    reservationsHandler.HandleDeleteForOwner,
		ListResources:     handlers.NewResourcesHandler(reservationsService),
		AdminLogin:        adminHandler.HandleLogin,
		AdminDelete:       adminHandler.HandleDelete,
		AdminMigrateTimes: adminHandler.HandleMigrateTimes,
		AdminEnsureSlots:  adminHandler.HandleReconcileSlots,
		Events:            handlers.NewEventsHandler(hub, logger),
		Health:            handlers.NewHealthHandler(),
		AdminAuth:         middleware.AdminAuth(tokens),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
