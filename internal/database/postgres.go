package database

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"hrcms/internal/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type DB struct {
	*sqlx.DB
}

// ConnectDB opens the PostgreSQL pool and verifies it with a ping.
func ConnectDB(ctx context.Context, cfg config.DB, logger *zap.Logger) (*DB, error) {
	logger.Info("connecting to postgres",
		zap.String("host", cfg.DbHOST),
		zap.String("db", cfg.DbNAME),
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &DB{db}, nil
}

// RunMigrations applies every embedded migration in file name order.
// Migrations are written to be re-runnable.
func (db *DB) RunMigrations(ctx context.Context, logger *zap.Logger) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return errors.Wrap(err, "list migrations")
	}
	sort.Strings(names)

	for _, name := range names {
		migrationSQL, err := migrationFS.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "read migration %s", name)
		}

		logger.Info("applying migration", zap.String("file", name))
		if _, err = db.ExecContext(ctx, string(migrationSQL)); err != nil {
			return errors.Wrapf(err, "apply migration %s", name)
		}
	}

	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return errors.New("postgres connection is not initialized")
	}
	return db.PingContext(ctx)
}

func (db *DB) Name() string {
	return config.DriverPostgres
}

func (db *DB) Close(context.Context) error {
	return db.DB.Close()
}
