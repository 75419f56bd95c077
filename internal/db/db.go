package db

import (
	"errors" // Error construction
	"fmt"    // Error wrapping
	"time"   // Slow query threshold

	"artspace/internal/config" // Custom package for configuration

	"github.com/glebarez/sqlite" // Pure Go SQLite driver for GORM
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger interface
)

// Sentinel errors returned by the store operations
var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadySold      = errors.New("artwork already sold")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrProtectedAccount = errors.New("seed admin account cannot be deleted")
)

// gormConfig maps driver errors to gorm.ErrDuplicatedKey etc. and sends gorm's own
// logs through logrus. Expected misses (record not found) are not logged.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Open connects to the database selected by cfg.DBDriver
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.MySQLDSN()), gormConfig())
	case "sqlite", "":
		return OpenSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens (and creates if missing) a SQLite database file
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection serialises writes instead of failing with SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}
