package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/MereWhiplash/neurocat/internal/storage"
)

func TestNew_SQLite(t *testing.T) {
	f, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.Close()

	ctx := context.Background()
	store, err := storage.New(ctx, storage.Config{
		Driver:     "sqlite",
		SQLitePath: f.Name(),
	})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	// Verify it works
	if err := store.Insert(ctx, "red", make([]float32, 8)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
}

func TestNew_DefaultsToSQLite(t *testing.T) {
	ctx := context.Background()
	store, err := storage.New(ctx, storage.Config{SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Driver != "sqlite" {
		t.Errorf("expected driver 'sqlite', got %q", stats.Driver)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	ctx := context.Background()
	_, err := storage.New(ctx, storage.Config{
		Driver: "unknown",
	})
	if err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestNew_SQLite_MissingPath(t *testing.T) {
	ctx := context.Background()
	_, err := storage.New(ctx, storage.Config{
		Driver: "sqlite",
	})
	if err == nil {
		t.Error("expected error for missing sqlite path")
	}
}

func TestNew_Postgres_MissingDSN(t *testing.T) {
	ctx := context.Background()
	_, err := storage.New(ctx, storage.Config{
		Driver: "postgres",
	})
	if err == nil {
		t.Error("expected error for missing postgres DSN")
	}
}

func TestNew_MongoDB_MissingURI(t *testing.T) {
	ctx := context.Background()
	_, err := storage.New(ctx, storage.Config{
		Driver: "mongodb",
	})
	if err == nil {
		t.Error("expected error for missing mongodb URI")
	}
}
