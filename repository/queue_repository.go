package repository

import (
	"fmt"

	"partyfm/db"
	"partyfm/model"

	"gorm.io/gorm"
)

// QueueRepository writes the attribution records the wider party system
// expects when a guest queues a selection. The queue itself is owned by that
// system; this side only appends.
type QueueRepository interface {
	CreateUpload(rec *model.UploadRecord) (int64, error)
	Enqueue(entry *model.QueueEntry) (int64, error)
	UnplayedCount() (int64, error)
}

// mysqlQueueRepository implements QueueRepository on MySQL via GORM.
type mysqlQueueRepository struct {
	db *gorm.DB
}

// NewMySQLQueueRepository creates a queue repository on the shared GORM handle.
func NewMySQLQueueRepository() QueueRepository {
	return &mysqlQueueRepository{db: db.GormDB}
}

func (r *mysqlQueueRepository) CreateUpload(rec *model.UploadRecord) (int64, error) {
	if err := r.db.Create(rec).Error; err != nil {
		return 0, fmt.Errorf("failed to create upload record: %w", err)
	}
	return rec.ID, nil
}

func (r *mysqlQueueRepository) Enqueue(entry *model.QueueEntry) (int64, error) {
	if err := r.db.Create(entry).Error; err != nil {
		return 0, fmt.Errorf("failed to enqueue track: %w", err)
	}
	return entry.ID, nil
}

func (r *mysqlQueueRepository) UnplayedCount() (int64, error) {
	var count int64
	if err := r.db.Model(&model.QueueEntry{}).Where("played = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unplayed queue entries: %w", err)
	}
	return count, nil
}
