package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/quota"
	"github.com/neberku/neberku-backend/internal/repository"
	"github.com/neberku/neberku-backend/pkg/cache"
	pkglogger "github.com/neberku/neberku-backend/pkg/logger"
	"gorm.io/gorm"
)

// ModerationService host approve/reject of guest posts and media
type ModerationService struct {
	db        *gorm.DB
	eventRepo repository.EventRepository
	postRepo  repository.PostRepository
	mediaRepo repository.MediaRepository
	cache     cache.Service
}

// NewModerationService creates a new ModerationService
func NewModerationService(
	db *gorm.DB,
	eventRepo repository.EventRepository,
	postRepo repository.PostRepository,
	mediaRepo repository.MediaRepository,
	cacheService cache.Service,
) *ModerationService {
	return &ModerationService{db: db, eventRepo: eventRepo, postRepo: postRepo, mediaRepo: mediaRepo, cache: cacheService}
}

// ownedEvent loads an event and checks the host owns it
func ownedEvent(find func(uuid.UUID) (*domain.Event, error), hostID string, eventID uuid.UUID) (*domain.Event, error) {
	event, err := find(eventID)
	if err != nil {
		return nil, err
	}
	if hostID == "" || event.HostID != hostID {
		return nil, common.ErrForbidden
	}
	return event, nil
}

// ListPosts every post of the host's event, pending ones included
func (s *ModerationService) ListPosts(hostID string, eventID uuid.UUID, page, limit int) (*PostPage, error) {
	event, err := ownedEvent(s.eventRepo.FindByID, hostID, eventID)
	if err != nil {
		return nil, err
	}

	posts, total, err := s.postRepo.ListByEvent(event.ID, false, page, limit)
	if err != nil {
		return nil, err
	}

	result := &PostPage{
		Posts: make([]domain.GuestPostResponse, 0, len(posts)),
		Meta:  common.Meta{EventID: event.ID.String(), Page: page, Limit: limit, Total: total},
	}
	for _, p := range posts {
		result.Posts = append(result.Posts, p.ToResponse(true))
	}
	return result, nil
}

// SetPostApproval flips a post and cascades to its media. Approving re-runs the package
// allocation over the post's files, so media past the package ceiling stays pending.
func (s *ModerationService) SetPostApproval(ctx context.Context, hostID string, postID uuid.UUID, approved bool) (*domain.GuestPostResponse, error) {
	var result *domain.GuestPost
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.postRepo.WithTx(tx)
		media := s.mediaRepo.WithTx(tx)

		post, err := posts.FindByID(postID)
		if err != nil {
			return err
		}
		event, err := ownedEvent(s.eventRepo.WithTx(tx).LockByID, hostID, post.EventID)
		if err != nil {
			return err
		}

		if err := posts.SetApproved(post.ID, approved); err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(post.MediaFiles))
		for i := range post.MediaFiles {
			ids = append(ids, post.MediaFiles[i].ID)
		}
		if err := media.SetApproved(ids, false); err != nil {
			return err
		}

		if approved && len(ids) > 0 {
			counts, err := media.CountApproved(event.ID)
			if err != nil {
				return err
			}
			alloc := quota.Allocate(event.Package, toCounts(counts), true)

			var approve []uuid.UUID
			index := map[domain.MediaType]int{}
			for i := range post.MediaFiles {
				f := &post.MediaFiles[i]
				if alloc.Approve(f.MediaType, index[f.MediaType]) {
					approve = append(approve, f.ID)
				}
				index[f.MediaType]++
			}
			if err := media.SetApproved(approve, true); err != nil {
				return err
			}
		}

		result, err = posts.FindByID(post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordModeration(ctx, "post", approved, result.EventID)
	resp := result.ToResponse(true)
	return &resp, nil
}

// SetMediaApproval flips one media file; approving fails when the package ceiling for its kind is used up
func (s *ModerationService) SetMediaApproval(ctx context.Context, hostID string, mediaID uuid.UUID, approved bool) (*domain.MediaFile, error) {
	var result *domain.MediaFile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		media := s.mediaRepo.WithTx(tx)

		file, err := media.FindByID(mediaID)
		if err != nil {
			return err
		}
		event, err := ownedEvent(s.eventRepo.WithTx(tx).LockByID, hostID, file.EventID)
		if err != nil {
			return err
		}

		if approved && !file.IsApproved {
			if limit := event.Package.Cap(file.MediaType); limit != nil {
				counts, err := media.CountApproved(event.ID)
				if err != nil {
					return err
				}
				if counts[file.MediaType] >= *limit {
					return common.ErrPackageLimitReached
				}
			}
		}

		if err := media.SetApproved([]uuid.UUID{file.ID}, approved); err != nil {
			return err
		}
		result, err = media.FindByID(file.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordModeration(ctx, "media", approved, result.EventID)
	return result, nil
}

func (s *ModerationService) recordModeration(ctx context.Context, target string, approved bool, eventID uuid.UUID) {
	action := "reject"
	if approved {
		action = "approve"
	}
	moderationActionsTotal.WithLabelValues(target, action).Inc()

	if err := s.cache.InvalidateGallery(ctx, eventID.String()); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("gallery cache invalidation failed")
	}
	log := pkglogger.WithEventID(eventID.String())
	log.Info().
		Str("target", target).
		Bool("approved", approved).
		Msg("moderation applied")
}
