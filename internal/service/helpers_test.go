package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/repository"
	"github.com/neberku/neberku-backend/pkg/cache"
	"github.com/neberku/neberku-backend/pkg/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const mb = 1024 * 1024

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Package{}, &domain.Event{}, &domain.EventSettings{},
		&domain.Guest{}, &domain.GuestPost{}, &domain.MediaFile{},
	))
	return db
}

// memStorage in-memory blob store; failAt makes the n-th upload (1-based) fail.
// onUpload, when set, runs before each upload is recorded.
type memStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	uploads  int
	failAt   int
	onUpload func(ctx context.Context)
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error) {
	if m.onUpload != nil {
		m.onUpload(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads++
	if m.failAt > 0 && m.uploads == m.failAt {
		return nil, errors.New("disk full")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	m.objects[key] = data
	return &storage.UploadResult{Key: key, URL: "https://cdn.test/" + key, ContentType: contentType, Size: size}, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type testEnv struct {
	db           *gorm.DB
	store        *memStorage
	contribution *ContributionService
	events       *EventService
	gallery      *GalleryService
	moderation   *ModerationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	store := newMemStorage()
	cacheService := cache.NewService(nil)

	eventRepo := repository.NewEventRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	return &testEnv{
		db:           db,
		store:        store,
		contribution: NewContributionService(db, eventRepo, guestRepo, postRepo, mediaRepo, store, cacheService),
		events:       NewEventService(eventRepo, postRepo, mediaRepo),
		gallery:      NewGalleryService(eventRepo, postRepo, mediaRepo, cacheService),
		moderation:   NewModerationService(db, eventRepo, postRepo, mediaRepo, cacheService),
	}
}

func intPtr(v int) *int { return &v }

// seedEvent creates a live event open to every media kind.
// pkg nil gets an unlimited package; settings nil leaves the event without a settings row.
func (e *testEnv) seedEvent(t *testing.T, pkg *domain.Package, settings *domain.EventSettings, mutate ...func(*domain.Event)) *domain.Event {
	t.Helper()
	if pkg == nil {
		pkg = &domain.Package{}
	}
	pkg.Name = "pkg-" + uuid.NewString()[:8]
	pkg.IsActive = true
	require.NoError(t, e.db.Create(pkg).Error)

	code := strings.ToUpper(uuid.NewString()[:8])
	event := &domain.Event{
		HostID:          "host-1",
		PackageID:       pkg.ID,
		Title:           "Wedding",
		EventDate:       time.Now(),
		AllowPhotos:     true,
		AllowVideos:     true,
		AllowVoice:      true,
		AllowWishes:     true,
		Status:          domain.EventStatusActive,
		PaymentStatus:   domain.PaymentStatusPaid,
		IsPublic:        true,
		ContributorCode: &code,
	}
	for _, m := range mutate {
		m(event)
	}
	require.NoError(t, e.db.Create(event).Error)

	if settings != nil {
		settings.EventID = event.ID
		require.NoError(t, e.db.Create(settings).Error)
	}
	return event
}

// seedMedia stores a prior post for phone holding n files of kind
func (e *testEnv) seedMedia(t *testing.T, event *domain.Event, phone string, kind domain.MediaType, n int, approved bool) *domain.GuestPost {
	t.Helper()
	var guest domain.Guest
	err := e.db.Where(domain.Guest{EventID: event.ID, Phone: phone}).
		Attrs(domain.Guest{Name: "Seed"}).FirstOrCreate(&guest).Error
	require.NoError(t, err)

	post := &domain.GuestPost{GuestID: guest.ID, EventID: event.ID, WishText: "earlier", IsApproved: approved}
	require.NoError(t, e.db.Omit("MediaFiles", "Guest").Create(post).Error)

	files := make([]domain.MediaFile, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, domain.MediaFile{
			PostID: post.ID, GuestID: guest.ID, EventID: event.ID,
			MediaType: kind, FileName: "seed", IsApproved: approved,
		})
	}
	if n > 0 {
		require.NoError(t, e.db.Create(&files).Error)
	}
	post.MediaFiles = files
	return post
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func upload(kind domain.MediaType, name string, size int64) Upload {
	return Upload{
		MediaType: kind,
		Name:      name,
		Size:      size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(name)), nil
		},
	}
}

func request(event *domain.Event, phone string, files ...Upload) *ContributionRequest {
	return &ContributionRequest{
		EventID:    event.ID,
		GuestName:  "Hana",
		GuestPhone: phone,
		WishText:   "Congratulations!",
		IPAddress:  "10.0.0.1",
		UserAgent:  "test-agent",
		Files:      files,
	}
}
