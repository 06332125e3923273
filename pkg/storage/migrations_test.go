package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migrations) == 0 || migrations[0].Version != 1 || migrations[0].Name != "kv" {
		t.Fatalf("unexpected migrations %+v", migrations)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Errorf("migrations not sorted: %d after %d", migrations[i].Version, migrations[i-1].Version)
		}
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), DBName)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}

		version, err := s.SchemaVersion(ctx)
		if err != nil {
			t.Fatalf("schema version: %v", err)
		}
		migrations, _ := loadMigrations()
		if want := migrations[len(migrations)-1].Version; version != want {
			t.Errorf("expected schema version %d, got %d", want, version)
		}

		var applied int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM migrations`).Scan(&applied); err != nil {
			t.Fatal(err)
		}
		if applied != len(migrations) {
			t.Errorf("expected %d applied migrations, got %d", len(migrations), applied)
		}
		s.Close()
	}
}
