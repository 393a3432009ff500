package model

import "time"

// LibraryTrack represents one indexed audio file in the local music library.
// Identity is the file path; re-indexing the same path replaces the row.
type LibraryTrack struct {
	ID       int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	FilePath string  `json:"filePath" gorm:"column:file_path;type:varchar(512);uniqueIndex;not null"`
	Artist   *string `json:"artist,omitempty" gorm:"type:varchar(255)"`
	Album    *string `json:"album,omitempty" gorm:"type:varchar(255)"`
	Title    *string `json:"title,omitempty" gorm:"type:varchar(255)"`
	Year     *int    `json:"year,omitempty"`
	Genre    *string `json:"genre,omitempty" gorm:"type:varchar(255)"`
	Duration *int    `json:"duration,omitempty"` // Seconds
	FileSize int64   `json:"fileSize" gorm:"column:file_size"`
	// JSON-encoded embedding vector; absent when the embedding provider
	// was unreachable or the track had no searchable text.
	Embedding *string `json:"-" gorm:"type:longtext"`
	// Space-joined artist/album/title/genre. Written in the same
	// transaction as the rest of the row and FULLTEXT indexed, so the
	// lexical index can never diverge from the primary record.
	SearchText string    `json:"-" gorm:"column:search_text;type:text"`
	IndexedAt  time.Time `json:"indexedAt" gorm:"column:indexed_at;autoUpdateTime"`
}

// TableName keeps the table name the indexer has always used.
func (LibraryTrack) TableName() string {
	return "music_library"
}

// TrackResult is a LibraryTrack as returned from a search, tagged with its
// origin and a playback locator under the media-serving route.
type TrackResult struct {
	ID       int64   `json:"id"`
	FilePath string  `json:"filePath"`
	Artist   *string `json:"artist,omitempty"`
	Album    *string `json:"album,omitempty"`
	Title    *string `json:"title,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Genre    *string `json:"genre,omitempty"`
	Duration *int    `json:"duration,omitempty"`
	FileSize int64   `json:"fileSize"`
	Source   string  `json:"source"` // Always "local"
	URL      string  `json:"url"`    // e.g. /media/music/<basename>
}
