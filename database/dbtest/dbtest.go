// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"blogGraph/database"
)

// Open creates a migrated sqlite database inside t.TempDir() and closes it when the test ends.
// It uses a single connection, one writer at a time keeps sqlite from answering SQLITE_BUSY.
func Open(t testing.TB) *database.DB {
	t.Helper()
	return OpenPool(t, 1)
}

// OpenPool is Open with up to conns connections, for tests that need statements
// to actually run side by side. Writers then wait on sqlite's busy timeout.
func OpenPool(t testing.TB, conns int) *database.DB {
	t.Helper()

	db := database.NewDB(database.DialectSQLite, filepath.Join(t.TempDir(), "blog_test.db"))
	if err := database.Open(db, true); err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
