package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/quota"
	"github.com/neberku/neberku-backend/internal/repository"
)

// EventService guest-facing event lookups
type EventService struct {
	eventRepo repository.EventRepository
	postRepo  repository.PostRepository
	mediaRepo repository.MediaRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository, postRepo repository.PostRepository, mediaRepo repository.MediaRepository) *EventService {
	return &EventService{eventRepo: eventRepo, postRepo: postRepo, mediaRepo: mediaRepo}
}

// AccessByCode resolves a contributor code to its live event; works for private events
func (s *EventService) AccessByCode(code string) (*domain.EventGuestView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, common.ErrInvalidCode
	}
	event, err := s.eventRepo.FindLiveByContributorCode(code)
	if err != nil {
		return nil, err
	}
	return s.guestView(event)
}

// GuestView a live public event by ID; private events need the contributor code
func (s *EventService) GuestView(id uuid.UUID) (*domain.EventGuestView, error) {
	event, err := s.eventRepo.FindLive(id)
	if err != nil {
		return nil, err
	}
	if !event.IsPublic {
		return nil, common.ErrEventPrivate
	}
	return s.guestView(event)
}

func (s *EventService) guestView(event *domain.Event) (*domain.EventGuestView, error) {
	posts, err := s.postRepo.CountByEvent(event.ID, true)
	if err != nil {
		return nil, err
	}
	media, err := s.mediaRepo.CountByEvent(event.ID, true)
	if err != nil {
		return nil, err
	}

	limits := quota.LimitsFromSettings(event.Settings)
	view := &domain.EventGuestView{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		EventDate:        event.EventDate,
		Location:         event.Location,
		IsPublic:         event.IsPublic,
		AllowPhotos:      event.AllowPhotos,
		AllowVideos:      event.AllowVideos,
		AllowVoice:       event.AllowVoice,
		AllowWishes:      event.AllowWishes,
		MaxMediaPerGuest: limits.MaxMediaPerGuest,
		PerMediaQuota:    limits.Policy == quota.PolicyPerMediaType,
		MaxImagePerPost:  limits.PerKind.Photo,
		MaxVideoPerPost:  limits.PerKind.Video,
		MaxVoicePerPost:  limits.PerKind.Voice,
		TotalGuestPosts:  posts,
		TotalMediaFiles:  media,
	}
	if event.Package != nil {
		view.PackageName = event.Package.Name
		view.PackageMaxPhotos = event.Package.MaxPhotos
		view.PackageMaxVideos = event.Package.MaxVideos
		view.PackageMaxVoice = event.Package.MaxVoice
	}
	return view, nil
}
