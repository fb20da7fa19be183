package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventSettings host-configured per-guest limits (event_settings table).
//
// MaxPostsPerGuest is a total media item ceiling per guest, not a post count.
// MakeValidationPerMedia additionally enables the per-kind ceilings.
// Size limits are in MB, 0 disables the check. Empty format lists accept any extension.
type EventSettings struct {
	ID                     uint64                      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	EventID                uuid.UUID                   `gorm:"column:event_id;type:char(36);uniqueIndex" json:"-"`
	MaxPhotoSize           int                         `gorm:"column:max_photo_size" json:"max_photo_size"`
	MaxVideoSize           int                         `gorm:"column:max_video_size" json:"max_video_size"`
	MaxVoiceSize           int                         `gorm:"column:max_voice_size" json:"max_voice_size"`
	AllowedPhotoFormats    datatypes.JSONSlice[string] `gorm:"column:allowed_photo_formats" json:"allowed_photo_formats"`
	AllowedVideoFormats    datatypes.JSONSlice[string] `gorm:"column:allowed_video_formats" json:"allowed_video_formats"`
	AllowedVoiceFormats    datatypes.JSONSlice[string] `gorm:"column:allowed_voice_formats" json:"allowed_voice_formats"`
	RequireApproval        bool                        `gorm:"column:require_approval;not null" json:"require_approval"`
	ShowGuestNames         bool                        `gorm:"column:show_guest_names;not null" json:"show_guest_names"`
	MakeValidationPerMedia bool                        `gorm:"column:make_validation_per_media;not null" json:"make_validation_per_media"`
	MaxPostsPerGuest       int                         `gorm:"column:max_posts_per_guest" json:"max_posts_per_guest"`
	MaxImagePerPost        int                         `gorm:"column:max_image_per_post" json:"max_image_per_post"`
	MaxVideoPerPost        int                         `gorm:"column:max_video_per_post" json:"max_video_per_post"`
	MaxVoicePerPost        int                         `gorm:"column:max_voice_per_post" json:"max_voice_per_post"`
	CreatedAt              time.Time                   `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt              time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (EventSettings) TableName() string { return "event_settings" }

// NewEventSettings returns the values a host gets when creating an event
func NewEventSettings(eventID uuid.UUID) *EventSettings {
	return &EventSettings{
		EventID:             eventID,
		MaxPhotoSize:        10,
		MaxVideoSize:        100,
		MaxVoiceSize:        10,
		AllowedPhotoFormats: datatypes.JSONSlice[string]{"jpg", "jpeg", "png", "heic"},
		AllowedVideoFormats: datatypes.JSONSlice[string]{"mp4", "mov"},
		AllowedVoiceFormats: datatypes.JSONSlice[string]{"mp3", "m4a", "wav", "ogg", "webm"},
		ShowGuestNames:      true,
		MaxPostsPerGuest:    5,
		MaxImagePerPost:     3,
		MaxVideoPerPost:     2,
		MaxVoicePerPost:     1,
	}
}

// MaxSizeMB per-kind file size ceiling in MB
func (s *EventSettings) MaxSizeMB(t MediaType) int {
	switch t {
	case MediaPhoto:
		return s.MaxPhotoSize
	case MediaVideo:
		return s.MaxVideoSize
	case MediaVoice:
		return s.MaxVoiceSize
	}
	return 0
}

// AllowedFormats per-kind accepted extensions (without dot)
func (s *EventSettings) AllowedFormats(t MediaType) []string {
	switch t {
	case MediaPhoto:
		return s.AllowedPhotoFormats
	case MediaVideo:
		return s.AllowedVideoFormats
	case MediaVoice:
		return s.AllowedVoiceFormats
	}
	return nil
}
