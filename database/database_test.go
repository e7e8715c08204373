package database

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestConnect_SQLite(t *testing.T) {
	ctx := context.Background()

	db, err := Connect(ctx, Config{Driver: DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer db.Close(ctx)

	if db.Gorm == nil {
		t.Fatal("Connect() returned nil Gorm handle for sqlite driver")
	}
	if db.Mongo != nil {
		t.Error("Connect() set Mongo handle for sqlite driver")
	}
	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestConnect_MissingURI(t *testing.T) {
	_, err := Connect(context.Background(), Config{Driver: DriverMongo})
	if !errors.Is(err, ErrMissingURI) {
		t.Errorf("Connect() error = %v, want %v", err, ErrMissingURI)
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), Config{Driver: "postgres"})
	if err == nil {
		t.Error("Connect() should reject an unknown driver")
	}
}

func TestConnect_Mongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()

	db, err := Connect(ctx, Config{Driver: DriverMongo, MongoURI: uri, DatabaseName: "todo_app_test"})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer db.Close(ctx)

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
