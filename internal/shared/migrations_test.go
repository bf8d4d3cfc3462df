package shared

import (
	"database/sql"
	"slices"
	"testing"
)

func countMigrations(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to query schema_migrations: %v", err)
	}
	return count
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		first := migrations[0]
		if first.Version != 0 || first.Name != "create_storage" {
			t.Errorf("unexpected first migration %d %q", first.Version, first.Name)
		}
		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration version %d missing a direction", m.Version)
			}
		}
	})

	t.Run("splitStatements", func(t *testing.T) {
		script := `
-- leading comment
CREATE TABLE a (id INTEGER); -- trailing
;
DROP TABLE b;
`
		got := splitStatements(script)
		want := []string{"CREATE TABLE a (id INTEGER)", "DROP TABLE b"}
		if !slices.Equal(got, want) {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("RunMigrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if got := countMigrations(t, db); got != len(migrations) {
			t.Errorf("expected %d applied migrations, got %d", len(migrations), got)
		}

		var name string
		if err := db.QueryRow("SELECT name FROM schema_migrations WHERE version = 0").Scan(&name); err != nil {
			t.Fatalf("failed to read migration name: %v", err)
		}
		if name != "create_storage" {
			t.Errorf("expected recorded name create_storage, got %q", name)
		}

		if _, err := db.Exec("SELECT 1 FROM storage LIMIT 1"); err != nil {
			t.Errorf("storage table should exist after migrations: %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		migrations, _ := loadMigrations()
		if got := countMigrations(t, db); got != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), got)
		}
	})

	t.Run("ResetDatabase Drops Stored Rows", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if _, err := db.Exec("INSERT INTO storage (key, value) VALUES ('spotify_token', 'tok')"); err != nil {
			t.Fatalf("failed to seed storage: %v", err)
		}

		if err := ResetDatabase(db); err != nil {
			t.Fatalf("failed to reset database: %v", err)
		}

		var rows int
		if err := db.QueryRow("SELECT COUNT(*) FROM storage").Scan(&rows); err != nil {
			t.Fatalf("storage table should be recreated: %v", err)
		}
		if rows != 0 {
			t.Errorf("expected empty storage after reset, got %d rows", rows)
		}

		migrations, _ := loadMigrations()
		if got := countMigrations(t, db); got != len(migrations) {
			t.Errorf("expected %d applied migrations after reset, got %d", len(migrations), got)
		}
	})

	t.Run("ResetDatabase On Fresh Database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := ResetDatabase(db); err != nil {
			t.Fatalf("reset of an empty database should just migrate: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM storage LIMIT 1"); err != nil {
			t.Errorf("storage table should exist after reset: %v", err)
		}
	})

	t.Run("OpenDatabase", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Path: ":memory:"})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("INSERT INTO storage (key, value) VALUES ('k', 'v')"); err != nil {
			t.Errorf("expected storage table to be writable: %v", err)
		}
	})
}
