package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guest unauthenticated contributor, unique per (event, phone) (guests table)
type Guest struct {
	ID        uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"column:event_id;type:char(36);uniqueIndex:idx_guests_event_phone,priority:1" json:"event_id"`
	Phone     string    `gorm:"column:phone;size:20;uniqueIndex:idx_guests_event_phone,priority:2" json:"phone"`
	Name      string    `gorm:"column:name;size:100" json:"name"`
	IPAddress *string   `gorm:"column:ip_address;size:45" json:"-"`
	UserAgent string    `gorm:"column:user_agent;type:text" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Guest) TableName() string { return "guests" }

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
