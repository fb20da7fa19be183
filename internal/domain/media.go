package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaType kind of an uploaded guest file
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaVoice MediaType = "voice"
)

// MediaTypes lists every kind in the order uploads are processed
var MediaTypes = []MediaType{MediaPhoto, MediaVideo, MediaVoice}

// DefaultMIME is used when the client did not send a content type
func (t MediaType) DefaultMIME() string {
	switch t {
	case MediaPhoto:
		return "image/jpeg"
	case MediaVideo:
		return "video/mp4"
	case MediaVoice:
		return "audio/mpeg"
	}
	return "application/octet-stream"
}

// Label human-readable singular name used in messages
func (t MediaType) Label() string {
	if t == MediaVoice {
		return "voice recording"
	}
	return string(t)
}

// MediaFile one stored guest upload (media_files table)
type MediaFile struct {
	ID         uuid.UUID  `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	PostID     uuid.UUID  `gorm:"column:post_id;type:char(36);index:idx_media_post_type,priority:1" json:"post_id"`
	GuestID    uuid.UUID  `gorm:"column:guest_id;type:char(36);index" json:"guest_id"`
	EventID    uuid.UUID  `gorm:"column:event_id;type:char(36);index:idx_media_event_type_approved,priority:1" json:"event_id"`
	MediaType  MediaType  `gorm:"column:media_type;size:10;index:idx_media_event_type_approved,priority:2;index:idx_media_post_type,priority:2" json:"media_type"`
	StorageKey string     `gorm:"column:storage_key;size:512" json:"-"`
	URL        string     `gorm:"column:url;size:1024" json:"url"`
	FileSize   int64      `gorm:"column:file_size" json:"file_size"`
	FileName   string     `gorm:"column:file_name;size:255" json:"file_name"`
	MimeType   string     `gorm:"column:mime_type;size:100" json:"mime_type"`
	IsApproved bool       `gorm:"column:is_approved;index:idx_media_event_type_approved,priority:3" json:"is_approved"`
	ApprovedAt *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MediaFile) TableName() string { return "media_files" }

func (m *MediaFile) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *MediaFile) BeforeSave(tx *gorm.DB) error {
	if m.IsApproved && m.ApprovedAt == nil {
		now := time.Now()
		m.ApprovedAt = &now
	}
	return nil
}
