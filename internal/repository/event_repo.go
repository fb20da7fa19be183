package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository event data access interface
type EventRepository interface {
	// FindLive returns an active, paid event with its package and settings
	FindLive(id uuid.UUID) (*domain.Event, error)
	// LockLive is FindLive holding a row lock until the surrounding transaction ends
	LockLive(id uuid.UUID) (*domain.Event, error)
	FindByID(id uuid.UUID) (*domain.Event, error)
	// LockByID is FindByID holding a row lock, regardless of the event's status
	LockByID(id uuid.UUID) (*domain.Event, error)
	FindLiveByContributorCode(code string) (*domain.Event, error)
	FindWithoutContributorCode() ([]*domain.Event, error)
	SetContributorCode(id uuid.UUID, code string) error
	ContributorCodeExists(code string) (bool, error)
	WithTx(tx *gorm.DB) EventRepository
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &eventRepository{db: tx}
}

func (r *eventRepository) live() *gorm.DB {
	return r.db.Preload("Package").Preload("Settings").
		Where("status = ? AND payment_status = ?", domain.EventStatusActive, domain.PaymentStatusPaid)
}

func (r *eventRepository) FindLive(id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	if err := r.live().Where("id = ?", id).First(&event).Error; err != nil {
		return nil, notFound(err, common.ErrEventNotFound)
	}
	return &event, nil
}

func (r *eventRepository) LockLive(id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := r.live().Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, notFound(err, common.ErrEventNotFound)
	}
	return &event, nil
}

func (r *eventRepository) FindByID(id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := r.db.Preload("Package").Preload("Settings").Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, notFound(err, common.ErrEventNotFound)
	}
	return &event, nil
}

func (r *eventRepository) LockByID(id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := r.db.Preload("Package").Preload("Settings").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, notFound(err, common.ErrEventNotFound)
	}
	return &event, nil
}

func (r *eventRepository) FindLiveByContributorCode(code string) (*domain.Event, error) {
	var event domain.Event
	if err := r.live().Where("contributor_code = ?", code).First(&event).Error; err != nil {
		return nil, notFound(err, common.ErrInvalidCode)
	}
	return &event, nil
}

func (r *eventRepository) FindWithoutContributorCode() ([]*domain.Event, error) {
	var events []*domain.Event
	err := r.db.Where("contributor_code IS NULL OR contributor_code = ''").Find(&events).Error
	return events, err
}

func (r *eventRepository) SetContributorCode(id uuid.UUID, code string) error {
	return r.db.Model(&domain.Event{}).Where("id = ?", id).
		UpdateColumn("contributor_code", code).Error
}

func (r *eventRepository) ContributorCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Event{}).Where("contributor_code = ?", code).Count(&count).Error
	return count > 0, err
}

// notFound maps gorm.ErrRecordNotFound to a domain error
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
