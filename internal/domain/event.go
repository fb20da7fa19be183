package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event statuses
const (
	EventStatusDraft          = "draft"
	EventStatusPendingPayment = "pending_payment"
	EventStatusActive         = "active"
	EventStatusCompleted      = "completed"
	EventStatusCancelled      = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Event a hosted event that guests contribute to (events table)
type Event struct {
	ID              uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	HostID          string         `gorm:"column:host_id;size:64;index" json:"host_id"`
	PackageID       uint64         `gorm:"column:package_id;index" json:"package_id"`
	Package         *Package       `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Settings        *EventSettings `gorm:"foreignKey:EventID" json:"settings,omitempty"`
	Title           string         `gorm:"column:title;size:200" json:"title"`
	Description     string         `gorm:"column:description;type:text" json:"description"`
	EventDate       time.Time      `gorm:"column:event_date" json:"event_date"`
	Location        string         `gorm:"column:location;size:200" json:"location"`
	AllowPhotos     bool           `gorm:"column:allow_photos;not null" json:"allow_photos"`
	AllowVideos     bool           `gorm:"column:allow_videos;not null" json:"allow_videos"`
	AllowVoice      bool           `gorm:"column:allow_voice;not null" json:"allow_voice"`
	AllowWishes     bool           `gorm:"column:allow_wishes;not null" json:"allow_wishes"`
	Status          string         `gorm:"column:status;size:20;index:idx_events_live,priority:1" json:"status"`
	PaymentStatus   string         `gorm:"column:payment_status;size:20;index:idx_events_live,priority:2" json:"payment_status"`
	IsPublic        bool           `gorm:"column:is_public;not null" json:"is_public"`
	ContributorCode *string        `gorm:"column:contributor_code;size:16;uniqueIndex" json:"-"`
	PublishedAt     *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsLive an event accepts contributions only when active and paid
func (e *Event) IsLive() bool {
	return e.Status == EventStatusActive && e.PaymentStatus == PaymentStatusPaid
}

// Allows reports whether guests may upload the given media kind
func (e *Event) Allows(t MediaType) bool {
	switch t {
	case MediaPhoto:
		return e.AllowPhotos
	case MediaVideo:
		return e.AllowVideos
	case MediaVoice:
		return e.AllowVoice
	}
	return false
}

// AllowsAnyMedia at least one media kind is enabled
func (e *Event) AllowsAnyMedia() bool {
	return e.AllowPhotos || e.AllowVideos || e.AllowVoice
}

// CanBeAccessedByGuest public events are open; private events need the matching contributor code
func (e *Event) CanBeAccessedByGuest(code string) bool {
	if e.IsPublic {
		return true
	}
	return code != "" && e.ContributorCode != nil && *e.ContributorCode == code
}

// EventGuestView what a guest sees before contributing
type EventGuestView struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	EventDate        time.Time `json:"event_date"`
	Location         string    `json:"location"`
	IsPublic         bool      `json:"is_public"`
	AllowPhotos      bool      `json:"allow_photos"`
	AllowVideos      bool      `json:"allow_videos"`
	AllowVoice       bool      `json:"allow_voice"`
	AllowWishes      bool      `json:"allow_wishes"`
	PackageName      string    `json:"package_name,omitempty"`
	PackageMaxPhotos *int      `json:"package_max_photos"`
	PackageMaxVideos *int      `json:"package_max_videos"`
	PackageMaxVoice  *int      `json:"package_max_voice"`
	MaxMediaPerGuest int       `json:"max_media_per_guest"`
	PerMediaQuota    bool      `json:"per_media_quota"`
	MaxImagePerPost  int       `json:"max_image_per_post"`
	MaxVideoPerPost  int       `json:"max_video_per_post"`
	MaxVoicePerPost  int       `json:"max_voice_per_post"`
	TotalGuestPosts  int64     `json:"total_guest_posts"`
	TotalMediaFiles  int64     `json:"total_media_files"`
}
