package model

import "time"

// UploadRecord is the attribution record the wider party system keeps for
// every piece of media a guest contributes. The search engine only creates
// one when a guest queues a selection; it never manages the lifecycle.
type UploadRecord struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DeviceID         string    `json:"deviceId" gorm:"column:device_id;type:varchar(64)"`
	GuestName        string    `json:"guestName" gorm:"column:guest_name;type:varchar(255)"`
	FilePath         string    `json:"filePath" gorm:"column:file_path;type:varchar(512)"`
	FileType         string    `json:"fileType" gorm:"column:file_type;type:varchar(16)"`
	OriginalFilename string    `json:"originalFilename" gorm:"column:original_filename;type:varchar(255)"`
	FileSize         int64     `json:"fileSize" gorm:"column:file_size"`
	CreatedAt        time.Time `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the table name the party database has always used.
func (UploadRecord) TableName() string {
	return "uploads"
}

// QueueEntry is one playable entry in the party queue, referencing its
// upload record for attribution.
type QueueEntry struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UploadID  int64     `json:"uploadId" gorm:"column:upload_id"`
	SongTitle string    `json:"songTitle" gorm:"column:song_title;type:varchar(255)"`
	Artist    string    `json:"artist" gorm:"type:varchar(255)"`
	Duration  *int      `json:"duration,omitempty"`
	Played    bool      `json:"played" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the table name the party database has always used.
func (QueueEntry) TableName() string {
	return "music_queue"
}
