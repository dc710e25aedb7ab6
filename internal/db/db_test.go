package db_test

import (
	"path/filepath"
	"testing"

	"github.com/mimmersdev/pases-universitarios/internal/assets"
	"github.com/mimmersdev/pases-universitarios/internal/db"
	"github.com/mimmersdev/pases-universitarios/internal/testutil"
)

func TestForeignKeyCascadeDelete(t *testing.T) {
	// Setup test database with migrations already applied
	database := testutil.SetupTestDB(t)

	var foreignKeysEnabled int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeysEnabled); err != nil {
		t.Fatalf("Failed to check foreign keys status: %v", err)
	}
	if foreignKeysEnabled != 1 {
		t.Errorf("Foreign keys should be enabled, got: %d", foreignKeysEnabled)
	}

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := database.Exec(query, args...); err != nil {
			t.Fatalf("Failed to run %q: %v", query, err)
		}
	}

	mustExec("INSERT INTO cities (id, name, created_at) VALUES ('c1', 'Bogotá', datetime('now'))")
	mustExec("INSERT INTO universities (id, name, city_id, created_at, updated_at) VALUES ('u1', 'Uni', 'c1', datetime('now'), datetime('now'))")
	mustExec("INSERT INTO careers (university_id, id, name, created_at) VALUES ('u1', 'SIS', 'Systems', datetime('now'))")
	mustExec("INSERT INTO notifications (id, university_id, title, message, created_at) VALUES ('n1', 'u1', 't', 'm', datetime('now'))")

	// Cities in use cannot be removed.
	if _, err := database.Exec("DELETE FROM cities WHERE id = 'c1'"); err == nil {
		t.Error("Expected deleting a referenced city to fail")
	}

	mustExec("DELETE FROM universities WHERE id = 'u1'")

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM careers WHERE university_id = 'u1'").Scan(&count); err != nil {
		t.Fatalf("Failed to check careers: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 careers after university deletion, got %d", count)
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count); err != nil {
		t.Fatalf("Failed to check notifications: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 notifications after university deletion, got %d", count)
	}
}

func TestInitDBAndMigrationVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pases.db")
	database, err := db.InitDB(path)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	// A second run is a no-op.
	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		t.Fatalf("Second RunMigrations failed: %v", err)
	}

	version, dirty, err := db.MigrationVersion(database, assets.MigrationsFS)
	if err != nil {
		t.Fatalf("MigrationVersion failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected clean version 1, got %d (dirty=%v)", version, dirty)
	}
}
