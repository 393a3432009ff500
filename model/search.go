package model

import "time"

// Search result sources.
const (
	SourceLocal   = "local"
	SourceYouTube = "youtube"
)

// MusicSearch is one logged guest query and, once the guest picks a result,
// its outcome. Rows are append-only.
type MusicSearch struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Query          string    `json:"query" gorm:"type:varchar(512);not null"`
	SelectedResult *string   `json:"selectedResult,omitempty" gorm:"column:selected_result;type:text"` // JSON of the picked item
	Source         *string   `json:"source,omitempty" gorm:"type:varchar(16)"`                         // "local" or "youtube"
	GuestName      *string   `json:"guestName,omitempty" gorm:"column:guest_name;type:varchar(255)"`
	PartyEnergy    *float64  `json:"partyEnergy,omitempty" gorm:"column:party_energy"` // Reserved; no current producer
	CreatedAt      time.Time `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the table name the party database has always used.
func (MusicSearch) TableName() string {
	return "music_searches"
}

// SelectedResult describes the item a guest picked after a search.
type SelectedResult struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	FilePath string `json:"file_path,omitempty"` // Local selections
	URL      string `json:"url,omitempty"`       // YouTube selections
	Source   string `json:"source"`
}

// SearchBundle is the combined result of one guest query: local matches,
// external candidates, and the enhanced query when it differed from the
// original.
type SearchBundle struct {
	Query         string          `json:"query"`
	EnhancedQuery *string         `json:"enhanced_query,omitempty"`
	Local         []TrackResult   `json:"local"`
	YouTube       []YouTubeResult `json:"youtube"`
	TotalResults  int             `json:"total_results"`
}

// AIDJStatus reports whether enough searches have accumulated to offer the
// AI DJ mode.
type AIDJStatus struct {
	TotalSearches     int  `json:"total_searches"`
	Threshold         int  `json:"threshold"`
	ReadyForAIDJ      bool `json:"ready_for_ai_dj"`
	SearchesRemaining int  `json:"searches_remaining"`
}
