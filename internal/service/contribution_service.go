package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/quota"
	"github.com/neberku/neberku-backend/internal/repository"
	"github.com/neberku/neberku-backend/pkg/cache"
	pkglogger "github.com/neberku/neberku-backend/pkg/logger"
	"github.com/neberku/neberku-backend/pkg/storage"
	"gorm.io/gorm"
)

// Upload one incoming file, already decoded by the transport
type Upload struct {
	MediaType   domain.MediaType
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// ContributionRequest a guest submission
type ContributionRequest struct {
	EventID    uuid.UUID `json:"event" validate:"required"`
	GuestName  string    `json:"guest_name" validate:"required,max=100"`
	GuestPhone string    `json:"guest_phone" validate:"required,max=20"`
	WishText   string    `json:"wish_text" validate:"required"`
	IPAddress  string    `json:"-"`
	UserAgent  string    `json:"-"`
	Files      []Upload  `json:"-"`
}

// Incoming counts the request's files per kind
func (r *ContributionRequest) Incoming() quota.Counts {
	var c quota.Counts
	for i := range r.Files {
		c.Add(r.Files[i].MediaType, 1)
	}
	return c
}

// ContributionError a rejected submission; Message is shown to the guest as is
type ContributionError struct {
	Message string
	Err     error
}

func (e *ContributionError) Error() string { return e.Message }

func (e *ContributionError) Unwrap() error { return e.Err }

func reject(format string, args ...interface{}) *ContributionError {
	return &ContributionError{Message: fmt.Sprintf(format, args...)}
}

// ContributionService runs guest submissions through intake, quota evaluation,
// package allocation and persistence
type ContributionService struct {
	db        *gorm.DB
	eventRepo repository.EventRepository
	guestRepo repository.GuestRepository
	postRepo  repository.PostRepository
	mediaRepo repository.MediaRepository
	storage   storage.Storage
	cache     cache.Service
	validate  *validator.Validate
}

// NewContributionService creates a new ContributionService
func NewContributionService(
	db *gorm.DB,
	eventRepo repository.EventRepository,
	guestRepo repository.GuestRepository,
	postRepo repository.PostRepository,
	mediaRepo repository.MediaRepository,
	store storage.Storage,
	cacheService cache.Service,
) *ContributionService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ContributionService{
		db:        db,
		eventRepo: eventRepo,
		guestRepo: guestRepo,
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		storage:   store,
		cache:     cacheService,
		validate:  v,
	}
}

// Submit creates a guest post with its media. Either everything is stored or nothing is:
// files are uploaded before the event lock is taken, and on any later failure the
// transaction is rolled back and the uploaded blobs are removed.
func (s *ContributionService) Submit(ctx context.Context, req *ContributionRequest) (*domain.GuestPost, error) {
	log := pkglogger.WithEventID(req.EventID.String())

	post, err := s.submit(ctx, req)
	var rejected *ContributionError
	switch {
	case err == nil:
		contributionsTotal.WithLabelValues(outcomeAccepted).Inc()
		log.Info().
			Str("post_id", post.ID.String()).
			Bool("approved", post.IsApproved).
			Int("media", len(post.MediaFiles)).
			Msg("guest contribution stored")
	case errors.Is(err, common.ErrEventNotFound):
		contributionsTotal.WithLabelValues(outcomeNotFound).Inc()
	case errors.As(err, &rejected):
		contributionsTotal.WithLabelValues(outcomeRejected).Inc()
		log.Info().Str("reason", rejected.Message).Msg("guest contribution rejected")
	default:
		contributionsTotal.WithLabelValues(outcomeFailed).Inc()
		log.Error().Err(err).Msg("guest contribution failed")
	}
	return post, err
}

func (s *ContributionService) submit(ctx context.Context, req *ContributionRequest) (*domain.GuestPost, error) {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.GuestPhone = strings.TrimSpace(req.GuestPhone)
	if strings.TrimSpace(req.WishText) == "" {
		req.WishText = ""
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &ContributionError{Message: validationMessage(err), Err: common.ErrInvalidInput}
	}

	event, err := s.eventRepo.FindLive(req.EventID)
	if err != nil {
		return nil, err
	}
	incoming := req.Incoming()
	if err := checkSubmission(event, incoming); err != nil {
		return nil, err
	}

	var staged []domain.MediaFile
	if incoming.Total() > 0 {
		if err := s.precheck(event, req); err != nil {
			return nil, err
		}
		if staged, err = s.stage(ctx, event.ID, req); err != nil {
			s.discard(ctx, storageKeys(staged))
			return nil, err
		}
	}

	var post *domain.GuestPost
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		post, txErr = s.persist(tx, req, staged)
		return txErr
	})
	if err != nil {
		s.discard(ctx, storageKeys(staged))
		return nil, err
	}

	if err := s.cache.InvalidateGallery(ctx, req.EventID.String()); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("gallery cache invalidation failed")
	}
	return post, nil
}

// precheck rejects over-quota or malformed batches before anything is uploaded.
// It takes no lock; persist repeats the quota check under the event lock.
func (s *ContributionService) precheck(event *domain.Event, req *ContributionRequest) error {
	existing, err := s.storedCounts(event.ID, req.GuestPhone)
	if err != nil {
		return err
	}
	if err := quota.LimitsFromSettings(event.Settings).Check(existing, req.Incoming()); err != nil {
		return &ContributionError{Message: err.Error(), Err: err}
	}

	for _, f := range req.Files {
		qf := quota.File{MediaType: f.MediaType, Name: f.Name, Size: f.Size, ContentType: f.ContentType}
		if err := quota.CheckFile(event.Settings, qf); err != nil {
			return &ContributionError{Message: err.Error(), Err: err}
		}
	}
	return nil
}

// stage uploads the batch grouped by kind. The returned rows have no owner IDs yet
// and are returned even on error so the caller can remove what was written.
func (s *ContributionService) stage(ctx context.Context, eventID uuid.UUID, req *ContributionRequest) ([]domain.MediaFile, error) {
	staged := make([]domain.MediaFile, 0, len(req.Files))
	for _, kind := range domain.MediaTypes {
		for _, f := range req.Files {
			if f.MediaType != kind {
				continue
			}
			mf, err := s.store(ctx, eventID, f)
			if err != nil {
				return staged, processingError(kind, f.Name, err)
			}
			staged = append(staged, *mf)
		}
	}
	return staged, nil
}

// persist runs with the event row locked, so counts cannot change between check and write
func (s *ContributionService) persist(tx *gorm.DB, req *ContributionRequest, staged []domain.MediaFile) (*domain.GuestPost, error) {
	events := s.eventRepo.WithTx(tx)
	posts := s.postRepo.WithTx(tx)
	media := s.mediaRepo.WithTx(tx)

	event, err := events.LockLive(req.EventID)
	if err != nil {
		return nil, err
	}

	guest, err := s.resolveGuest(s.guestRepo.WithTx(tx), event.ID, req)
	if err != nil {
		return nil, err
	}

	approved, err := provisionalApproval(posts, event)
	if err != nil {
		return nil, err
	}

	post := &domain.GuestPost{
		GuestID:    guest.ID,
		EventID:    event.ID,
		WishText:   req.WishText,
		IsApproved: approved,
	}
	if err := posts.Create(post); err != nil {
		return nil, err
	}
	post.Guest = guest
	post.MediaFiles = []domain.MediaFile{}

	if len(staged) == 0 {
		return post, nil
	}

	existing, err := media.CountByGuest(event.ID, guest.ID, post.ID)
	if err != nil {
		return nil, err
	}
	if err := quota.LimitsFromSettings(event.Settings).Check(toCounts(existing), req.Incoming()); err != nil {
		return nil, &ContributionError{Message: err.Error(), Err: err}
	}

	approvedCounts, err := media.CountApproved(event.ID)
	if err != nil {
		return nil, err
	}
	alloc := quota.Allocate(event.Package, toCounts(approvedCounts), post.IsApproved)

	files := make([]domain.MediaFile, 0, len(staged))
	var index quota.Counts
	for _, mf := range staged {
		mf.PostID = post.ID
		mf.GuestID = guest.ID
		mf.EventID = event.ID
		mf.IsApproved = alloc.Approve(mf.MediaType, index.Of(mf.MediaType))
		index.Add(mf.MediaType, 1)

		if err := media.Create(&mf); err != nil {
			return nil, processingError(mf.MediaType, mf.FileName, err)
		}
		files = append(files, mf)
	}
	for i := range files {
		mediaStoredTotal.WithLabelValues(string(files[i].MediaType), strconv.FormatBool(files[i].IsApproved)).Inc()
	}

	post.MediaFiles = files
	return post, nil
}

// resolveGuest get-or-create on (event, phone); a changed name is updated
func (s *ContributionService) resolveGuest(guests repository.GuestRepository, eventID uuid.UUID, req *ContributionRequest) (*domain.Guest, error) {
	guest, err := guests.FindByPhone(eventID, req.GuestPhone)
	if err == nil {
		if guest.Name != req.GuestName {
			if err := guests.UpdateName(guest.ID, req.GuestName); err != nil {
				return nil, err
			}
			guest.Name = req.GuestName
		}
		return guest, nil
	}
	if !errors.Is(err, common.ErrGuestNotFound) {
		return nil, err
	}

	guest = &domain.Guest{
		EventID:   eventID,
		Phone:     req.GuestPhone,
		Name:      req.GuestName,
		UserAgent: req.UserAgent,
	}
	if req.IPAddress != "" {
		ip := req.IPAddress
		guest.IPAddress = &ip
	}
	if err := guests.Create(guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// store uploads one file; the returned row has no owner IDs yet
func (s *ContributionService) store(ctx context.Context, eventID uuid.UUID, f Upload) (*domain.MediaFile, error) {
	body, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer body.Close()

	mime := f.ContentType
	if mime == "" {
		mime = f.MediaType.DefaultMIME()
	}

	key := storage.MediaKey(eventID.String(), string(f.MediaType), f.Name)
	res, err := s.storage.Upload(ctx, key, body, mime, f.Size)
	if err != nil {
		return nil, err
	}

	return &domain.MediaFile{
		MediaType:  f.MediaType,
		StorageKey: res.Key,
		URL:        res.URL,
		FileSize:   f.Size,
		FileName:   f.Name,
		MimeType:   mime,
	}, nil
}

func processingError(kind domain.MediaType, name string, err error) *ContributionError {
	return &ContributionError{
		Message: fmt.Sprintf("Error processing %s %s: %v", kind.Label(), name, err),
		Err:     err,
	}
}

func storageKeys(files []domain.MediaFile) []string {
	keys := make([]string, 0, len(files))
	for i := range files {
		keys = append(keys, files[i].StorageKey)
	}
	return keys
}

// discard removes blobs of a rejected or rolled back submission
func (s *ContributionService) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("key", key).Msg("orphaned upload left in storage")
		}
	}
}

// Allowance what a guest (by phone) may still upload to a live event
func (s *ContributionService) Allowance(eventID uuid.UUID, phone string) (*quota.Allowance, error) {
	event, err := s.eventRepo.FindLive(eventID)
	if err != nil {
		return nil, err
	}

	existing, err := s.storedCounts(event.ID, strings.TrimSpace(phone))
	if err != nil {
		return nil, err
	}

	a := quota.LimitsFromSettings(event.Settings).Allowance(existing)
	return &a, nil
}

// storedCounts the media a guest (by phone) already has on the event; an unknown phone has none
func (s *ContributionService) storedCounts(eventID uuid.UUID, phone string) (quota.Counts, error) {
	guest, err := s.guestRepo.FindByPhone(eventID, phone)
	if errors.Is(err, common.ErrGuestNotFound) {
		return quota.Counts{}, nil
	}
	if err != nil {
		return quota.Counts{}, err
	}

	counts, err := s.mediaRepo.CountByGuest(eventID, guest.ID, uuid.Nil)
	if err != nil {
		return quota.Counts{}, err
	}
	return toCounts(counts), nil
}

// checkSubmission rejections that need no stored counts
func checkSubmission(event *domain.Event, incoming quota.Counts) error {
	if !event.AllowWishes {
		return reject("This event does not allow wishes.")
	}
	if !event.AllowsAnyMedia() {
		return reject("This event does not allow media uploads.")
	}
	for _, t := range domain.MediaTypes {
		if incoming.Of(t) > 0 && !event.Allows(t) {
			return reject("This event does not allow %ss.", t.Label())
		}
	}
	return nil
}

// provisionalApproval a post starts approved unless the host moderates every post
// or the package's post ceiling is already used up by approved posts
func provisionalApproval(posts repository.PostRepository, event *domain.Event) (bool, error) {
	if event.Settings != nil && event.Settings.RequireApproval {
		return false, nil
	}
	if event.Package == nil || event.Package.MaxPosts == nil {
		return true, nil
	}

	n, err := posts.CountByEvent(event.ID, true)
	if err != nil {
		return false, err
	}
	return n < int64(*event.Package.MaxPosts), nil
}

func toCounts(m repository.MediaCounts) quota.Counts {
	var c quota.Counts
	for t, n := range m {
		c.Add(t, n)
	}
	return c
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err.Error()
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required.", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid.", fe.Field()))
		}
	}
	return strings.Join(msgs, " ")
}
