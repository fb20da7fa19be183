package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"gorm.io/gorm"
)

// PostRepository guest post data access interface
type PostRepository interface {
	// Create inserts the post row only; media rows go through MediaRepository
	Create(post *domain.GuestPost) error
	FindByID(id uuid.UUID) (*domain.GuestPost, error)
	ListByEvent(eventID uuid.UUID, approvedOnly bool, page, limit int) ([]*domain.GuestPost, int64, error)
	CountByEvent(eventID uuid.UUID, approvedOnly bool) (int64, error)
	SetApproved(id uuid.UUID, approved bool) error
	WithTx(tx *gorm.DB) PostRepository
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

func (r *postRepository) Create(post *domain.GuestPost) error {
	return r.db.Omit("MediaFiles", "Guest").Create(post).Error
}

func (r *postRepository) FindByID(id uuid.UUID) (*domain.GuestPost, error) {
	var post domain.GuestPost
	err := r.db.Preload("Guest").
		Preload("MediaFiles", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, notFound(err, common.ErrPostNotFound)
	}
	return &post, nil
}

// ListByEvent newest first; approvedOnly also hides unapproved media of approved posts
func (r *postRepository) ListByEvent(eventID uuid.UUID, approvedOnly bool, page, limit int) ([]*domain.GuestPost, int64, error) {
	var posts []*domain.GuestPost
	var total int64

	query := r.eventPosts(eventID, approvedOnly)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	media := func(db *gorm.DB) *gorm.DB {
		if approvedOnly {
			db = db.Where("is_approved = ?", true)
		}
		return db.Order("created_at ASC")
	}

	offset := (page - 1) * limit
	err := query.Preload("Guest").Preload("MediaFiles", media).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) CountByEvent(eventID uuid.UUID, approvedOnly bool) (int64, error) {
	var count int64
	err := r.eventPosts(eventID, approvedOnly).Count(&count).Error
	return count, err
}

func (r *postRepository) eventPosts(eventID uuid.UUID, approvedOnly bool) *gorm.DB {
	query := r.db.Model(&domain.GuestPost{}).Where("event_id = ?", eventID)
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}
	return query.Session(&gorm.Session{})
}

func (r *postRepository) SetApproved(id uuid.UUID, approved bool) error {
	updates := map[string]interface{}{"is_approved": approved, "approved_at": nil}
	if approved {
		updates["approved_at"] = time.Now()
	}
	result := r.db.Model(&domain.GuestPost{}).Where("id = ?", id).UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrPostNotFound
	}
	return nil
}
