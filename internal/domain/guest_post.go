package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestPost one guest submission: a wish plus optional media (guest_posts table)
type GuestPost struct {
	ID         uuid.UUID   `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	GuestID    uuid.UUID   `gorm:"column:guest_id;type:char(36);index" json:"guest_id"`
	Guest      *Guest      `gorm:"foreignKey:GuestID" json:"-"`
	EventID    uuid.UUID   `gorm:"column:event_id;type:char(36);index:idx_posts_event_approved,priority:1" json:"event_id"`
	WishText   string      `gorm:"column:wish_text;type:text" json:"wish_text"`
	IsApproved bool        `gorm:"column:is_approved;index:idx_posts_event_approved,priority:2" json:"is_approved"`
	ApprovedAt *time.Time  `gorm:"column:approved_at" json:"approved_at,omitempty"`
	MediaFiles []MediaFile `gorm:"foreignKey:PostID" json:"media_files"`
	CreatedAt  time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GuestPost) TableName() string { return "guest_posts" }

func (p *GuestPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *GuestPost) BeforeSave(tx *gorm.DB) error {
	if p.IsApproved && p.ApprovedAt == nil {
		now := time.Now()
		p.ApprovedAt = &now
	}
	return nil
}

// GuestPostResponse API view of a post
type GuestPostResponse struct {
	ID              uuid.UUID   `json:"id"`
	EventID         uuid.UUID   `json:"event_id"`
	GuestName       string      `json:"guest_name,omitempty"`
	WishText        string      `json:"wish_text"`
	IsApproved      bool        `json:"is_approved"`
	ApprovedAt      *time.Time  `json:"approved_at,omitempty"`
	MediaFiles      []MediaFile `json:"media_files"`
	TotalMediaFiles int         `json:"total_media_files"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ToResponse builds the API view; guest names are omitted when the host hides them
func (p *GuestPost) ToResponse(showGuestName bool) GuestPostResponse {
	resp := GuestPostResponse{
		ID:              p.ID,
		EventID:         p.EventID,
		WishText:        p.WishText,
		IsApproved:      p.IsApproved,
		ApprovedAt:      p.ApprovedAt,
		MediaFiles:      p.MediaFiles,
		TotalMediaFiles: len(p.MediaFiles),
		CreatedAt:       p.CreatedAt,
	}
	if resp.MediaFiles == nil {
		resp.MediaFiles = []MediaFile{}
	}
	if showGuestName && p.Guest != nil {
		resp.GuestName = p.Guest.Name
	}
	return resp
}

// CountMedia number of files of a kind attached to the post
func (p *GuestPost) CountMedia(t MediaType) int {
	n := 0
	for i := range p.MediaFiles {
		if p.MediaFiles[i].MediaType == t {
			n++
		}
	}
	return n
}
