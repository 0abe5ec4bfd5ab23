package database

import (
	"context"
	"fmt"
	"time"

	"zapshift-backend/config"
	"zapshift-backend/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Open connects the store selected by DB_DRIVER and prepares its schema.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		store, err := ConnectMongo(ctx, cfg.DBURL, cfg.DBName, cfg.MongoTransactions, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := OpenPostgres(cfg.DBURL, cfg.AppEnv, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

func ConnectMongo(ctx context.Context, uri, dbName string, transactions bool, log *zap.Logger) (*repository.MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := repository.NewMongoStore(client, client.Database(dbName), transactions)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	log.Info("connected to mongo",
		zap.String("database", dbName),
		zap.Bool("transactions", transactions),
	)
	return store, nil
}

func OpenPostgres(dsn, env string, log *zap.Logger) (*repository.GormStore, error) {
	level := gormlogger.Warn
	if env == "production" {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store := repository.NewGormStore(db)
	if err := store.AutoMigrate(); err != nil {
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.Info("connected to postgres and migrated")
	return store, nil
}
