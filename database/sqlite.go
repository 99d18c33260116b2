package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite opens a sqlite database. SQLite allows one writer, so the pool is
// pinned to a single connection and every statement queues behind it.
func OpenSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{TranslateError: true}
	}
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

var memoryCounter atomic.Int64

// OpenMemory opens a private, migrated in-memory database. Used by tests and by
// `DB_DRIVER=sqlite SQLITE_PATH=:memory:` local runs.
func OpenMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:laundry_mem_%d?mode=memory&cache=shared&_busy_timeout=5000", memoryCounter.Add(1))
	db, err := OpenSQLite(dsn, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
