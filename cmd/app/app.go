package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"hrcms/internal/auth"
	"hrcms/internal/config"
	"hrcms/internal/database"
	handlers "hrcms/internal/handler"
	"hrcms/internal/middleware"
	"hrcms/internal/repository"
	"hrcms/internal/repository/mongodb"
	"hrcms/internal/service"
	"hrcms/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Cfg      *config.Config
	Logger   *zap.Logger
	Store    database.Store
	Services *service.Service
	Handlers *handlers.Handlers
}

// Connect opens the store selected by DB_DRIVER and builds the repositories over it.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (database.Store, *repository.Repository, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := database.ConnectDB(ctx, cfg.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, repository.NewPostgresRepository(db.DB), nil
	case config.DriverMongo:
		db, err := database.ConnectMongo(ctx, cfg.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, repository.NewMongoRepository(db.Database()), nil
	default:
		return nil, nil, errors.Errorf("unknown DB_DRIVER %q", cfg.DB.Driver)
	}
}

// Migrate creates indexes (MongoDB) or applies the SQL schema (Postgres).
// Both are safe to repeat.
func Migrate(ctx context.Context, store database.Store, logger *zap.Logger) error {
	switch db := store.(type) {
	case *database.DB:
		return db.RunMigrations(ctx, logger)
	case *database.Mongo:
		logger.Info("ensuring mongodb indexes")
		return mongodb.EnsureIndexes(ctx, db.Database())
	default:
		return errors.Errorf("no migrations for store %s", store.Name())
	}
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, repo, err := Connect(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}

	if err = Migrate(ctx, store, logger); err != nil {
		_ = store.Close(context.Background())
		return nil, errors.Wrap(err, "migrate database")
	}

	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO, logger)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, errors.Wrap(err, "init minio")
	}

	services := service.NewService(repo, cfg, minioClient, logger)

	return &App{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		Services: services,
		Handlers: handlers.NewHandlers(services, store, cfg, logger),
	}, nil
}

// Router assembles the routes and the middleware chain. The last
// middleware in the chain runs first.
func (a *App) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)
	a.Handlers.Routes(r, middleware.RequireAdmin)

	return middleware.Chain(r,
		middleware.Authenticate(auth.NewVerifier(a.Cfg.Auth.JWTSecretKey, a.Cfg.Auth.AdminRole)),
		middleware.Timeout(a.Cfg.Server.RequestTimeout),
		middleware.Logging(a.Logger.Named("access")),
		middleware.RequestID,
		middleware.CORS(a.Cfg.Server.AllowedOrigins),
		middleware.Recovery(a.Logger),
	)
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// closes the store.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Cfg.Server.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("database", a.Store.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = a.Store.Close(context.Background())
			return errors.Wrap(err, "listen")
		}
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := a.Store.Close(shutdownCtx); err != nil {
		return errors.Wrap(err, "close database")
	}
	return nil
}
