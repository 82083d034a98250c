package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cybersite/internal/config"
	"cybersite/internal/models"
	console "cybersite/internal/utils/logger"
)

var DB *gorm.DB
var log = console.New("DB")

// GormConfig is shared by the postgres connection and the sqlite test databases.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: false,
		TranslateError:                           true,
		AllowGlobalUpdate:                        false,
	}
}

func Connect(cfg *config.Config) error {
	dsn := cfg.Database.DSN()

	log.Info("Connecting to database %s@%s:%d/%s...", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), GormConfig())
		if err == nil {
			log.Success("Connected to database")

			sqlDB, err := DB.DB()
			if err != nil {
				return log.Error("Failed to get underlying *sql.DB instance", err)
			}

			sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
			sqlDB.SetConnMaxLifetime(time.Hour)
			sqlDB.SetConnMaxIdleTime(time.Minute * 30)

			if err := Migrate(DB); err != nil {
				return log.Error("Failed to run migrations", err)
			}

			log.Success("Migrations completed")

			return nil
		}
		log.Warn("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Second * 5)
	}
	return log.Error("Failed to connect to database after %d attempts", err, maxRetries)
}

// Migrate creates or updates every table in one transaction.
func Migrate(db *gorm.DB) error {
	log.Info("Running migrations...")
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	})
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
