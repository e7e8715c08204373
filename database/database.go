// Package database opens the document store the auth and task modules persist to.
//
// MongoDB is the primary backend. SQLite through GORM is available for local
// development and is what the package tests run against.
package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectTimeout bounds server selection and the startup ping.
const ConnectTimeout = 5 * time.Second

// Driver names a store backend.
type Driver string

const (
	DriverMongo  Driver = "mongo"
	DriverSQLite Driver = "sqlite"
)

// ErrMissingURI is returned when the mongo driver is selected without a connection string.
var ErrMissingURI = errors.New("MONGO_CONNECTION_STRING is not set")

// Config describes how to reach the store.
type Config struct {
	Driver       Driver
	MongoURI     string
	DatabaseName string
	SQLitePath   string
}

// DB is an open store handle. Exactly one of Mongo or Gorm is set, matching Driver.
type DB struct {
	Driver Driver
	Mongo  *mongo.Database
	Gorm   *gorm.DB

	client *mongo.Client
}

// Connect opens the configured backend and verifies it answers within ConnectTimeout.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return connectSQLite(cfg.SQLitePath)
	case DriverMongo, "":
		return connectMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func connectMongo(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.MongoURI == "" {
		return nil, ErrMissingURI
	}

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	log.Printf("[database] Connected to MongoDB (database: %s)", cfg.DatabaseName)
	return &DB{
		Driver: DriverMongo,
		Mongo:  client.Database(cfg.DatabaseName),
		client: client,
	}, nil
}

func connectSQLite(path string) (*DB, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[database] Opened SQLite database: %s", path)
	return &DB{Driver: DriverSQLite, Gorm: db}, nil
}

// OpenSQLite opens a GORM SQLite handle. Use ":memory:" for tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	// Each new connection to ":memory:" is a separate empty database.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Ping checks the backend is still reachable.
func (d *DB) Ping(ctx context.Context) error {
	switch d.Driver {
	case DriverMongo:
		return d.client.Ping(ctx, readpref.Primary())
	case DriverSQLite:
		sqlDB, err := d.Gorm.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return fmt.Errorf("unsupported database driver %q", d.Driver)
}

// Close releases the underlying connections.
func (d *DB) Close(ctx context.Context) error {
	switch d.Driver {
	case DriverMongo:
		return d.client.Disconnect(ctx)
	case DriverSQLite:
		sqlDB, err := d.Gorm.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
