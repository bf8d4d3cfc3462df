package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestStorageRepository(t *testing.T) {
	t.Run("Get Missing Key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		value, ok, err := repo.Get(models.TokenKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || value != "" {
			t.Errorf("expected missing key, got %q (%v)", value, ok)
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		if err := repo.Set(models.TokenKey, "BQD-token"); err != nil {
			t.Fatalf("failed to set key: %v", err)
		}

		value, ok, err := repo.Get(models.TokenKey)
		if err != nil {
			t.Fatalf("failed to get key: %v", err)
		}
		if !ok || value != "BQD-token" {
			t.Errorf("expected BQD-token, got %q (%v)", value, ok)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		if err := repo.Set(models.TokenExpiryKey, "1"); err != nil {
			t.Fatalf("failed to set key: %v", err)
		}
		if err := repo.Set(models.TokenExpiryKey, "2"); err != nil {
			t.Fatalf("failed to overwrite key: %v", err)
		}

		value, _, _ := repo.Get(models.TokenExpiryKey)
		if value != "2" {
			t.Errorf("expected overwritten value 2, got %q", value)
		}

		keys, err := repo.Keys()
		if err != nil {
			t.Fatalf("failed to list keys: %v", err)
		}
		if len(keys) != 1 {
			t.Errorf("expected a single row after overwrite, got %v", keys)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewStorageRepository(db)
		repo.Set(models.TokenKey, "a")
		repo.Set(models.TokenExpiryKey, "1")
		repo.Set("other", "kept")

		if err := repo.Delete(models.TokenKey, models.TokenExpiryKey); err != nil {
			t.Fatalf("failed to delete keys: %v", err)
		}

		keys, _ := repo.Keys()
		if len(keys) != 1 || keys[0] != "other" {
			t.Errorf("expected only 'other' to remain, got %v", keys)
		}

		if err := repo.Delete(models.TokenKey); err != nil {
			t.Errorf("deleting a missing key should not fail, got %v", err)
		}
		if err := repo.Delete(); err != nil {
			t.Errorf("deleting no keys should not fail, got %v", err)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewStorageRepository(db)
		db.Close()

		if _, _, err := repo.Get(models.TokenKey); err == nil {
			t.Error("expected error reading from closed database")
		}
		if err := repo.Set(models.TokenKey, "x"); err == nil {
			t.Error("expected error writing to closed database")
		}
		if err := repo.Delete(models.TokenKey); err == nil {
			t.Error("expected error deleting from closed database")
		}
		if _, err := repo.Keys(); err == nil {
			t.Error("expected error listing closed database")
		}
	})
}
