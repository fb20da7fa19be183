package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Package purchasable tier with event-wide ceilings (packages table).
// A nil ceiling means unlimited.
type Package struct {
	ID          uint64                      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string                      `gorm:"column:name;size:100;uniqueIndex" json:"name"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Price       float64                     `gorm:"column:price;type:decimal(10,2)" json:"price"`
	MaxGuests   *int                        `gorm:"column:max_guests" json:"max_guests"`
	MaxPosts    *int                        `gorm:"column:max_posts" json:"max_posts"`
	MaxPhotos   *int                        `gorm:"column:max_photos" json:"max_photos"`
	MaxVideos   *int                        `gorm:"column:max_videos" json:"max_videos"`
	MaxVoice    *int                        `gorm:"column:max_voice" json:"max_voice"`
	Features    datatypes.JSONSlice[string] `gorm:"column:features" json:"features"`
	IsActive    bool                        `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Package) TableName() string { return "packages" }

// Cap returns the event-wide ceiling for a media kind
func (p *Package) Cap(t MediaType) *int {
	if p == nil {
		return nil
	}
	switch t {
	case MediaPhoto:
		return p.MaxPhotos
	case MediaVideo:
		return p.MaxVideos
	case MediaVoice:
		return p.MaxVoice
	}
	return nil
}
