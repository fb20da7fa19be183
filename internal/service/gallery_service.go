package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/repository"
	"github.com/neberku/neberku-backend/pkg/cache"
	pkglogger "github.com/neberku/neberku-backend/pkg/logger"
)

// PostPage one page of approved posts
type PostPage struct {
	Posts []domain.GuestPostResponse `json:"posts"`
	Meta  common.Meta                `json:"meta"`
}

// MediaPage one page of approved media
type MediaPage struct {
	Media []*domain.MediaFile `json:"media"`
	Meta  common.Meta         `json:"meta"`
}

// GalleryService approved content of live events, cached in redis
type GalleryService struct {
	eventRepo repository.EventRepository
	postRepo  repository.PostRepository
	mediaRepo repository.MediaRepository
	cache     cache.Service
}

// NewGalleryService creates a new GalleryService
func NewGalleryService(
	eventRepo repository.EventRepository,
	postRepo repository.PostRepository,
	mediaRepo repository.MediaRepository,
	cacheService cache.Service,
) *GalleryService {
	return &GalleryService{eventRepo: eventRepo, postRepo: postRepo, mediaRepo: mediaRepo, cache: cacheService}
}

func (s *GalleryService) liveEvent(eventID uuid.UUID, code string) (*domain.Event, error) {
	event, err := s.eventRepo.FindLive(eventID)
	if err != nil {
		return nil, err
	}
	if !event.CanBeAccessedByGuest(code) {
		return nil, common.ErrEventPrivate
	}
	return event, nil
}

// Posts approved posts with their approved media, newest first
func (s *GalleryService) Posts(ctx context.Context, eventID uuid.UUID, code string, page, limit int) (*PostPage, error) {
	event, err := s.liveEvent(eventID, code)
	if err != nil {
		return nil, err
	}

	section := fmt.Sprintf("posts:%d:%d", page, limit)
	var cached PostPage
	if err := s.cache.GetGallery(ctx, event.ID.String(), section, &cached); err == nil {
		return &cached, nil
	}

	posts, total, err := s.postRepo.ListByEvent(event.ID, true, page, limit)
	if err != nil {
		return nil, err
	}

	showNames := event.Settings == nil || event.Settings.ShowGuestNames
	result := &PostPage{
		Posts: make([]domain.GuestPostResponse, 0, len(posts)),
		Meta:  common.Meta{EventID: event.ID.String(), Page: page, Limit: limit, Total: total},
	}
	for _, p := range posts {
		result.Posts = append(result.Posts, p.ToResponse(showNames))
	}

	if err := s.cache.SetGallery(ctx, event.ID.String(), section, result); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("gallery cache write failed")
	}
	return result, nil
}

// Media approved media files, optionally of one kind
func (s *GalleryService) Media(ctx context.Context, eventID uuid.UUID, code string, mediaType domain.MediaType, page, limit int) (*MediaPage, error) {
	event, err := s.liveEvent(eventID, code)
	if err != nil {
		return nil, err
	}

	section := fmt.Sprintf("media:%s:%d:%d", mediaType, page, limit)
	var cached MediaPage
	if err := s.cache.GetGallery(ctx, event.ID.String(), section, &cached); err == nil {
		return &cached, nil
	}

	files, total, err := s.mediaRepo.ListApproved(event.ID, mediaType, page, limit)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []*domain.MediaFile{}
	}

	result := &MediaPage{
		Media: files,
		Meta:  common.Meta{EventID: event.ID.String(), Page: page, Limit: limit, Total: total},
	}
	if err := s.cache.SetGallery(ctx, event.ID.String(), section, result); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("gallery cache write failed")
	}
	return result, nil
}
