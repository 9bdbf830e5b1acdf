package models

import "time"

// Attachment records a stored upload so submissions can reference it by URL.
type Attachment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string    `gorm:"size:36;index;not null" json:"owner_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:100;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:64;not null" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
