package repository

import (
	"fmt"
	"time"

	"partyfm/db"
	"partyfm/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PatternRepository maintains the learned (type, value) frequency counters.
type PatternRepository interface {
	// Increment bumps the frequency for the pair, creating it at 1 on
	// first observation, and refreshes last_seen. Frequency never decreases.
	Increment(patternType, patternValue string) error
	// List returns patterns ordered by frequency then recency. An empty
	// patternType returns all types.
	List(patternType string, limit int) ([]*model.MusicPattern, error)
}

// mysqlPatternRepository implements PatternRepository on MySQL via GORM.
type mysqlPatternRepository struct {
	db *gorm.DB
}

// NewMySQLPatternRepository creates a pattern repository on the shared GORM handle.
func NewMySQLPatternRepository() PatternRepository {
	return &mysqlPatternRepository{db: db.GormDB}
}

func (r *mysqlPatternRepository) Increment(patternType, patternValue string) error {
	pattern := &model.MusicPattern{
		PatternType:  patternType,
		PatternValue: patternValue,
		Frequency:    1,
		LastSeen:     time.Now(),
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pattern_type"}, {Name: "pattern_value"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"frequency": gorm.Expr("frequency + 1"),
			"last_seen": time.Now(),
		}),
	}).Create(pattern).Error
	if err != nil {
		return fmt.Errorf("failed to increment pattern %s/%s: %w", patternType, patternValue, err)
	}
	return nil
}

func (r *mysqlPatternRepository) List(patternType string, limit int) ([]*model.MusicPattern, error) {
	var patterns []*model.MusicPattern
	q := r.db.Order("frequency DESC, last_seen DESC").Limit(limit)
	if patternType != "" {
		q = q.Where("pattern_type = ?", patternType)
	}
	if err := q.Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to list music patterns: %w", err)
	}
	return patterns, nil
}
