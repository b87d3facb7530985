package storage

import (
	"crmm/internal/config"
	"crmm/internal/util/logger"
	"os"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
)

func GetDb() *gorm.DB {
	dbOnce.Do(func() {
		log := logger.GetLogger()

		gormDB, err := gorm.Open(postgres.Open(config.GetEnv().DatabaseDsn), &gorm.Config{
			Logger:         gorm_logger.Default.LogMode(gorm_logger.Silent),
			TranslateError: true,
		})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Error("Failed to get database handle", "error", err)
			os.Exit(1)
		}

		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		db = gormDB
	})

	return db
}

// Tx returns tx when a transaction is in progress, the shared pool otherwise.
func Tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return GetDb()
}
