package database

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"hrcms/internal/config"
)

const mongoConnectTimeout = 30 * time.Second

var (
	connectMongo = func(ctx context.Context, clientOpts *options.ClientOptions) (*mongo.Client, error) {
		return mongo.Connect(ctx, clientOpts)
	}
	pingMongo = func(ctx context.Context, cli *mongo.Client) error {
		return cli.Ping(ctx, readpref.Primary())
	}
	disconnectMongo = func(ctx context.Context, cli *mongo.Client) error {
		return cli.Disconnect(ctx)
	}
)

// Mongo holds the client and the blog database handle.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func mongoClientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetConnectTimeout(mongoConnectTimeout).
		SetServerSelectionTimeout(mongoConnectTimeout).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetMaxPoolSize(50).
		SetMinPoolSize(2)
}

// ConnectMongo dials MongoDB and pings the primary before returning.
func ConnectMongo(ctx context.Context, cfg config.DB, logger *zap.Logger) (*Mongo, error) {
	if cfg.MongoDatabase == "" {
		return nil, errors.New("mongo database name is empty")
	}

	logger.Info("connecting to mongodb", zap.String("db", cfg.MongoDatabase))

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	cli, err := connectMongo(ctx, mongoClientOptions(cfg.MongoURI))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}

	if err = pingMongo(ctx, cli); err != nil {
		_ = disconnectMongo(context.Background(), cli)
		return nil, errors.Wrap(err, "ping mongodb")
	}

	return &Mongo{client: cli, db: cli.Database(cfg.MongoDatabase)}, nil
}

func (m *Mongo) Database() *mongo.Database {
	return m.db
}

func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func (m *Mongo) HealthCheck(ctx context.Context) error {
	if m == nil || m.client == nil {
		return errors.New("mongodb connection is not initialized")
	}
	return pingMongo(ctx, m.client)
}

func (m *Mongo) Name() string {
	return config.DriverMongo
}

func (m *Mongo) Close(ctx context.Context) error {
	return disconnectMongo(ctx, m.client)
}
