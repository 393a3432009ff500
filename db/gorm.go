package db

import (
	"fmt"
	"log"
	"time"

	"partyfm/config"
	"partyfm/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB is the shared GORM database handle.
var GormDB *gorm.DB

// ConnectGormDB establishes the GORM database connection.
func ConnectGormDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	sqlDB, err := GormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to the database with GORM.")
	return nil
}

// CloseGormDB closes the GORM database connection.
func CloseGormDB() error {
	if GormDB == nil {
		return nil
	}

	sqlDB, err := GormDB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// MigrateModels migrates the engine's tables and makes sure the FULLTEXT
// index backing lexical search exists.
func MigrateModels() error {
	if GormDB == nil {
		return fmt.Errorf("GORM database not initialized")
	}

	err := GormDB.AutoMigrate(
		&model.LibraryTrack{},
		&model.MusicSearch{},
		&model.MusicPattern{},
		&model.UploadRecord{},
		&model.QueueEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	if err := ensureFulltextIndex(); err != nil {
		return err
	}

	log.Println("Models migrated successfully with GORM.")
	return nil
}

// ensureFulltextIndex creates the FULLTEXT index over music_library.search_text.
// AutoMigrate cannot express FULLTEXT indexes, so this is raw SQL.
func ensureFulltextIndex() error {
	var count int64
	err := GormDB.Raw(`SELECT COUNT(*) FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = 'music_library' AND index_name = 'ft_music_search_text'`).
		Scan(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check FULLTEXT index: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := GormDB.Exec(`CREATE FULLTEXT INDEX ft_music_search_text ON music_library (search_text)`).Error; err != nil {
		return fmt.Errorf("failed to create FULLTEXT index: %w", err)
	}
	return nil
}
