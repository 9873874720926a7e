package db

import (
	"testing"
	"testing/fstest"

	"marina/migrations"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"002_payouts.sql": {Data: []byte("SELECT 1")},
		"001_init.sql":    {Data: []byte("SELECT 1")},
		"README.md":       {Data: []byte("docs")},
		"archive/000.sql": {Data: []byte("SELECT 1")},
		"010_indexes.sql": {Data: []byte("SELECT 1")},
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	want := []string{"001_init.sql", "002_payouts.sql", "010_indexes.sql"}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, files)
		}
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := migrationFiles(migrations.Files)
	if err != nil {
		t.Fatalf("list embedded migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected embedded migrations")
	}
}
