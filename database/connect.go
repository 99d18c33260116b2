package database

import (
	"fmt"
	"laundry_service/config"
	"laundry_service/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDB opens the configured database, migrates it and seeds the catalog.
func ConnectDB(settings config.Settings) *gorm.DB {
	var err error
	DB, err = Open(settings.DBDriver, settings.DBDsn)
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	fmt.Println("Connection Opened to Database")

	if err := Migrate(DB); err != nil {
		panic("failed to migrate database: " + err.Error())
	}
	fmt.Println("Database Migrated")

	SeedData(DB)
	return DB
}

func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	switch driver {
	case "sqlite":
		return OpenSQLite(dsn, cfg)
	case "postgres", "":
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Service{},
		&model.BasketItem{},
		&model.OrderSequence{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentTransaction{},
	)
}
