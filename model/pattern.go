package model

import "time"

// Pattern types learned from guest selections.
const (
	PatternArtist = "artist"
	PatternGenre  = "genre"
	PatternEnergy = "energy"
	PatternEra    = "era"
)

// MusicPattern is an aggregate learned signal: how often a given value of a
// given type (artist, genre, ...) has been observed. Unique per (type, value);
// frequency only ever increases.
type MusicPattern struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PatternType  string    `json:"pattern_type" gorm:"column:pattern_type;type:varchar(32);not null;uniqueIndex:idx_pattern_type_value"`
	PatternValue string    `json:"pattern_value" gorm:"column:pattern_value;type:varchar(255);not null;uniqueIndex:idx_pattern_type_value"`
	Frequency    int       `json:"frequency" gorm:"default:1"`
	LastSeen     time.Time `json:"last_seen" gorm:"column:last_seen"`
}

// TableName keeps the table name the party database has always used.
func (MusicPattern) TableName() string {
	return "music_patterns"
}
