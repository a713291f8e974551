package database

import (
	"fmt"
	"log"
	"time"

	"ev-dealer-hub/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// dialector picks the gorm driver for DB_DRIVER.
func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use mysql or postgres)", driver)
	}
}

// Open connects to the database, waiting for it to come up.
func Open(driver, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN is empty")
	}
	dial, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	// 1. Connect with GORM (Wait for DB to be ready)
	var db *gorm.DB
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dial, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/%d)", i+1, connectAttempts)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s after %d attempts: %w", driver, connectAttempts, err)
	}
	log.Printf("✅ Successfully connected to %s!", driver)

	// 2. Auto-Migrate
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("✅ Database Schema Synced!")
	return db, nil
}

// Migrate creates or updates one table per entity.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Dealer{},
		&models.VehicleType{},
		&models.Vehicle{},
		&models.Inventory{},
		&models.Customer{},
		&models.Order{},
		&models.DealerOrder{},
		&models.Debt{},
		&models.Promotion{},
		&models.Pricing{},
		&models.TestDrive{},
		&models.Feedback{},
		&models.Settings{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
