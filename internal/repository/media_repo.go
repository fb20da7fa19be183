package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"gorm.io/gorm"
)

// MediaCounts media rows per kind
type MediaCounts map[domain.MediaType]int

// MediaRepository media file data access interface
type MediaRepository interface {
	Create(file *domain.MediaFile) error
	FindByID(id uuid.UUID) (*domain.MediaFile, error)
	// CountByGuest the guest's stored media on the event, excluding one post (uuid.Nil excludes nothing)
	CountByGuest(eventID, guestID, excludePostID uuid.UUID) (MediaCounts, error)
	// CountApproved the event's approved media, used against package ceilings
	CountApproved(eventID uuid.UUID) (MediaCounts, error)
	CountByEvent(eventID uuid.UUID, approvedOnly bool) (int64, error)
	ListApproved(eventID uuid.UUID, mediaType domain.MediaType, page, limit int) ([]*domain.MediaFile, int64, error)
	SetApproved(ids []uuid.UUID, approved bool) error
	WithTx(tx *gorm.DB) MediaRepository
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) WithTx(tx *gorm.DB) MediaRepository {
	return &mediaRepository{db: tx}
}

func (r *mediaRepository) Create(file *domain.MediaFile) error {
	return r.db.Create(file).Error
}

func (r *mediaRepository) FindByID(id uuid.UUID) (*domain.MediaFile, error) {
	var file domain.MediaFile
	if err := r.db.Where("id = ?", id).First(&file).Error; err != nil {
		return nil, notFound(err, common.ErrMediaNotFound)
	}
	return &file, nil
}

func (r *mediaRepository) CountByGuest(eventID, guestID, excludePostID uuid.UUID) (MediaCounts, error) {
	query := r.db.Model(&domain.MediaFile{}).Where("event_id = ? AND guest_id = ?", eventID, guestID)
	if excludePostID != uuid.Nil {
		query = query.Where("post_id <> ?", excludePostID)
	}
	return r.countByType(query)
}

func (r *mediaRepository) CountApproved(eventID uuid.UUID) (MediaCounts, error) {
	query := r.db.Model(&domain.MediaFile{}).Where("event_id = ? AND is_approved = ?", eventID, true)
	return r.countByType(query)
}

func (r *mediaRepository) countByType(query *gorm.DB) (MediaCounts, error) {
	var rows []struct {
		MediaType domain.MediaType
		Total     int
	}
	err := query.Select("media_type, COUNT(*) AS total").Group("media_type").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(MediaCounts, len(rows))
	for _, row := range rows {
		counts[row.MediaType] = row.Total
	}
	return counts, nil
}

func (r *mediaRepository) CountByEvent(eventID uuid.UUID, approvedOnly bool) (int64, error) {
	var count int64
	query := r.db.Model(&domain.MediaFile{}).Where("event_id = ?", eventID)
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListApproved newest first; an empty mediaType lists every kind
func (r *mediaRepository) ListApproved(eventID uuid.UUID, mediaType domain.MediaType, page, limit int) ([]*domain.MediaFile, int64, error) {
	var files []*domain.MediaFile
	var total int64

	query := r.db.Model(&domain.MediaFile{}).Where("event_id = ? AND is_approved = ?", eventID, true)
	if mediaType != "" {
		query = query.Where("media_type = ?", mediaType)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&files).Error
	return files, total, err
}

func (r *mediaRepository) SetApproved(ids []uuid.UUID, approved bool) error {
	if len(ids) == 0 {
		return nil
	}
	updates := map[string]interface{}{"is_approved": approved, "approved_at": nil}
	if approved {
		updates["approved_at"] = time.Now()
	}
	return r.db.Model(&domain.MediaFile{}).Where("id IN ?", ids).UpdateColumns(updates).Error
}
