package repository

import (
	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"gorm.io/gorm"
)

// GuestRepository guest data access interface
type GuestRepository interface {
	FindByPhone(eventID uuid.UUID, phone string) (*domain.Guest, error)
	Create(guest *domain.Guest) error
	UpdateName(id uuid.UUID, name string) error
	CountByEvent(eventID uuid.UUID) (int64, error)
	WithTx(tx *gorm.DB) GuestRepository
}

type guestRepository struct {
	db *gorm.DB
}

// NewGuestRepository creates a new GuestRepository
func NewGuestRepository(db *gorm.DB) GuestRepository {
	return &guestRepository{db: db}
}

func (r *guestRepository) WithTx(tx *gorm.DB) GuestRepository {
	return &guestRepository{db: tx}
}

// FindByPhone returns common.ErrGuestNotFound when the phone never contributed to the event
func (r *guestRepository) FindByPhone(eventID uuid.UUID, phone string) (*domain.Guest, error) {
	var guest domain.Guest
	err := r.db.Where("event_id = ? AND phone = ?", eventID, phone).First(&guest).Error
	if err != nil {
		return nil, notFound(err, common.ErrGuestNotFound)
	}
	return &guest, nil
}

func (r *guestRepository) Create(guest *domain.Guest) error {
	return r.db.Create(guest).Error
}

func (r *guestRepository) UpdateName(id uuid.UUID, name string) error {
	return r.db.Model(&domain.Guest{}).Where("id = ?", id).UpdateColumn("name", name).Error
}

func (r *guestRepository) CountByEvent(eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Guest{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}
