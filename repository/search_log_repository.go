package repository

import (
	"fmt"

	"partyfm/db"
	"partyfm/model"

	"gorm.io/gorm"
)

// SearchLogRepository records guest search behavior. The log is append-only;
// nothing updates or deletes rows during normal operation.
type SearchLogRepository interface {
	Create(entry *model.MusicSearch) (int64, error)
	Count() (int64, error)
}

// mysqlSearchLogRepository implements SearchLogRepository on MySQL via GORM.
type mysqlSearchLogRepository struct {
	db *gorm.DB
}

// NewMySQLSearchLogRepository creates a search log repository on the shared GORM handle.
func NewMySQLSearchLogRepository() SearchLogRepository {
	return &mysqlSearchLogRepository{db: db.GormDB}
}

func (r *mysqlSearchLogRepository) Create(entry *model.MusicSearch) (int64, error) {
	if err := r.db.Create(entry).Error; err != nil {
		return 0, fmt.Errorf("failed to log music search: %w", err)
	}
	return entry.ID, nil
}

func (r *mysqlSearchLogRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.MusicSearch{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count music searches: %w", err)
	}
	return count, nil
}
