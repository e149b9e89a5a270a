package shared

import (
	"database/sql"
	"testing"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return n == 1
}

func appliedCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("failed to query schema_migrations: %v", err)
	}
	return n
}

func TestMigrations(t *testing.T) {
	tables := []struct {
		version int
		names   []string
	}{
		{version: 0, names: []string{"match_decisions", "pending_reviews"}},
		{version: 1, names: []string{"transfer_checkpoints", "transfer_reports"}},
		{version: 2, names: []string{"oauth_tokens", "quota_usage"}},
	}

	t.Run("embedded files pair up in version order", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) != len(tables) {
			t.Fatalf("expected %d migrations, got %d", len(tables), len(migrations))
		}
		for i, m := range migrations {
			if m.Version != tables[i].version {
				t.Errorf("expected version %d at %d, got %d", tables[i].version, i, m.Version)
			}
			if m.Name == "" {
				t.Errorf("migration %d has no name", m.Version)
			}
		}
	})

	t.Run("OpenDatabase creates every table", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Path: MemoryDSN})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		for _, tt := range tables {
			for _, name := range tt.names {
				if !tableExists(t, db, name) {
					t.Errorf("expected table %s after migrations", name)
				}
			}
		}
		if n := appliedCount(t, db); n != len(tables) {
			t.Errorf("expected %d applied migrations, got %d", len(tables), n)
		}
	})

	t.Run("running twice applies nothing new", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Path: MemoryDSN})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected no error on second run, got %v", err)
		}
		if n := appliedCount(t, db); n != len(tables) {
			t.Errorf("expected %d applied migrations, got %d", len(tables), n)
		}
	})

	t.Run("rollback walks back one version at a time", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Path: MemoryDSN})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		for i := len(tables) - 1; i >= 0; i-- {
			if err := RollbackMigration(db); err != nil {
				t.Fatalf("failed to roll back version %d: %v", tables[i].version, err)
			}
			for _, name := range tables[i].names {
				if tableExists(t, db, name) {
					t.Errorf("expected table %s to be dropped", name)
				}
			}
			if n := appliedCount(t, db); n != i {
				t.Errorf("expected %d applied migrations, got %d", i, n)
			}
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing is left to roll back")
		}
	})

	t.Run("stripComments", func(t *testing.T) {
		tc := []struct {
			name string
			in   string
			want string
		}{
			{name: "comment only", in: "-- header\n\n", want: ""},
			{name: "trailing comment", in: "CREATE TABLE a (id INTEGER) -- note", want: "CREATE TABLE a (id INTEGER)"},
			{name: "blank lines dropped", in: "\nSELECT 1\n\n", want: "SELECT 1"},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := stripComments(tt.in); got != tt.want {
					t.Errorf("expected %q, got %q", tt.want, got)
				}
			})
		}
	})
}
