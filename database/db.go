package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"blogGraph/domain"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DB provides the database connection.
type DB struct {
	// Object-relational mapping.
	Gorm *gorm.DB
	// Dialect is either DialectPostgres or DialectSQLite.
	Dialect string
	// Connection info string containing database name, user, port etc.
	// For sqlite it's the path of the database file.
	ConnectionInfo string
}

// NewDB returns a new instance of DB.
func NewDB(dialect, connectionInfo string) *DB {
	db := &DB{
		Dialect:        dialect,
		ConnectionInfo: connectionInfo,
	}
	return db
}

// Open opens a new database connection. It also configures logging
// based on whether we're in development or in production.
func Open(db *DB, isProd bool) (err error) {
	if db.ConnectionInfo == "" {
		return fmt.Errorf("connectionInfo required")
	}
	logMode := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if !isProd {
		logMode.Logger = logger.Default.LogMode(logger.Info)
	}
	switch db.Dialect {
	case DialectPostgres, "":
		db.Gorm, err = gorm.Open(postgres.Open(db.ConnectionInfo), logMode)
	case DialectSQLite:
		// modernc is pure go, foreign keys are off by default in sqlite.
		db.Gorm, err = gorm.Open(sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        db.ConnectionInfo + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		}, logMode)
	default:
		return fmt.Errorf("unknown dialect %q", db.Dialect)
	}
	if err != nil {
		return fmt.Errorf("err opening gorm %s connection: %w", db.Dialect, err)
	}
	return nil
}

// models lists every table, in dependency order.
var models = []interface{}{
	&domain.User{},
	&domain.Post{},
	&domain.Comment{},
	&domain.Follow{},
	&domain.PostLike{},
	&domain.CommentLike{},
}

// AutoMigrate runs database migrations for all tables.
func AutoMigrate(db *DB) error {
	return db.Gorm.AutoMigrate(models...)
}

// DestructiveReset drops all tables and rebuilds them.
func DestructiveReset(db *DB) error {
	// Drop dependents first, otherwise the foreign keys get in the way.
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Gorm.Migrator().DropTable(models[i]); err != nil {
			return err
		}
	}
	return AutoMigrate(db)
}

// Close closes the database connection.
func Close(db *DB) error {
	sqlDb, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
