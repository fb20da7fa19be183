package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/handler"
	"github.com/neberku/neberku-backend/internal/repository"
	"github.com/neberku/neberku-backend/internal/service"
	"github.com/neberku/neberku-backend/pkg/cache"
	"github.com/neberku/neberku-backend/pkg/jwt"
	"github.com/neberku/neberku-backend/pkg/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const hostID = "host-1"

// APISuite drives the HTTP API against sqlite and on-disk storage
type APISuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	jwtManager *jwt.Manager
	mediaDir   string
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.jwtManager = jwt.NewManager("test-secret-key-for-api-tests", 3600)
}

func (s *APISuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(db.AutoMigrate(
		&domain.Package{}, &domain.Event{}, &domain.EventSettings{},
		&domain.Guest{}, &domain.GuestPost{}, &domain.MediaFile{},
	))
	s.db = db

	s.mediaDir = s.T().TempDir()
	local, err := storage.NewLocalStorage(s.mediaDir, "/media")
	s.Require().NoError(err)
	s.router = s.newRouter(local)
}

func (s *APISuite) newRouter(store storage.Storage) *gin.Engine {
	eventRepo := repository.NewEventRepository(s.db)
	guestRepo := repository.NewGuestRepository(s.db)
	postRepo := repository.NewPostRepository(s.db)
	mediaRepo := repository.NewMediaRepository(s.db)
	cacheService := cache.NewService(nil)

	router := gin.New()
	Setup(router, Handlers{
		Contribution: handler.NewContributionHandler(
			service.NewContributionService(s.db, eventRepo, guestRepo, postRepo, mediaRepo, store, cacheService)),
		Event:   handler.NewEventHandler(service.NewEventService(eventRepo, postRepo, mediaRepo)),
		Gallery: handler.NewGalleryHandler(service.NewGalleryService(eventRepo, postRepo, mediaRepo, cacheService)),
		Moderation: handler.NewModerationHandler(
			service.NewModerationService(s.db, eventRepo, postRepo, mediaRepo, cacheService)),
	}, s.jwtManager, nil, Options{ContributionsPerMinute: 20})
	return router
}

func (s *APISuite) seedEvent(settings *domain.EventSettings, mutate ...func(*domain.Event)) *domain.Event {
	pkg := &domain.Package{Name: "pkg-" + uuid.NewString()[:8], IsActive: true}
	s.Require().NoError(s.db.Create(pkg).Error)

	code := strings.ToUpper(uuid.NewString()[:8])
	event := &domain.Event{
		HostID:          hostID,
		PackageID:       pkg.ID,
		Title:           "Garden wedding",
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
	s.Require().NoError(s.db.Create(event).Error)
	if settings != nil {
		settings.EventID = event.ID
		s.Require().NoError(s.db.Create(settings).Error)
	}
	return event
}

type formFile struct {
	field, name, content string
}

func contributionForm(eventID string, files ...formFile) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	_ = w.WriteField("event", eventID)
	_ = w.WriteField("guest_name", "Hana")
	_ = w.WriteField("guest_phone", "010-1234-5678")
	_ = w.WriteField("wish_text", "Congratulations!")
	for _, f := range files {
		part, _ := w.CreateFormFile(f.field, f.name)
		_, _ = io.WriteString(part, f.content)
	}
	_ = w.Close()
	return body, w.FormDataContentType()
}

func (s *APISuite) do(router *gin.Engine, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) submit(event *domain.Event, files ...formFile) *httptest.ResponseRecorder {
	body, contentType := contributionForm(event.ID.String(), files...)
	return s.do(s.router, http.MethodPost, "/api/v1/guest-posts", body, contentType, "")
}

func decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func errorMessage(w *httptest.ResponseRecorder) string {
	e, _ := decode(w)["error"].(map[string]interface{})
	msg, _ := e["message"].(string)
	return msg
}

func (s *APISuite) storedFiles() int {
	n := 0
	_ = filepath.Walk(s.mediaDir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return nil
	})
	return n
}

// --- Contributions ---

func (s *APISuite) TestCreateContribution() {
	event := s.seedEvent(domain.NewEventSettings(uuid.Nil))

	w := s.submit(event,
		formFile{"photos", "a.jpg", "jpeg-a"},
		formFile{"photos", "b.png", "png-b"},
		formFile{"voice_recordings", "hello.m4a", "voice"},
	)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	data := decode(w)["data"].(map[string]interface{})
	s.Equal("Congratulations!", data["wish_text"])
	s.Equal("Hana", data["guest_name"])
	s.Len(data["media_files"], 3)
	s.Equal(3, s.storedFiles())

	first := data["media_files"].([]interface{})[0].(map[string]interface{})
	s.True(strings.HasPrefix(first["url"].(string), "/media/events/"+event.ID.String()+"/photo/"))
}

func (s *APISuite) TestCreateContribution_WishOnly() {
	event := s.seedEvent(nil)

	w := s.submit(event)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Len(decode(w)["data"].(map[string]interface{})["media_files"], 0)
}

func (s *APISuite) TestCreateContribution_EventNotLive() {
	event := s.seedEvent(nil, func(e *domain.Event) { e.PaymentStatus = domain.PaymentStatusPending })

	w := s.submit(event)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestCreateContribution_InvalidEventID() {
	body, contentType := contributionForm("not-a-uuid")
	w := s.do(s.router, http.MethodPost, "/api/v1/guest-posts", body, contentType, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestCreateContribution_QuotaExceeded() {
	settings := domain.NewEventSettings(uuid.Nil)
	settings.MaxPostsPerGuest = 1
	event := s.seedEvent(settings)

	w := s.submit(event, formFile{"photos", "a.jpg", "a"}, formFile{"photos", "b.jpg", "b"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(errorMessage(w), "Maximum media files per guest (1) exceeded.")
	s.Zero(s.storedFiles())

	var posts int64
	s.db.Model(&domain.GuestPost{}).Count(&posts)
	s.Zero(posts)
}

func (s *APISuite) TestCreateContribution_FormatRejected() {
	event := s.seedEvent(domain.NewEventSettings(uuid.Nil))

	w := s.submit(event, formFile{"photos", "scan.tiff", "tiff"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Zero(s.storedFiles())
}

// mockStorage records calls; uploads fail when configured to
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error) {
	args := m.Called(key, contentType)
	if res, ok := args.Get(0).(*storage.UploadResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

func (s *APISuite) TestCreateContribution_StorageFailureRemovesUploads() {
	store := new(mockStorage)
	store.On("Upload", mock.Anything, "application/octet-stream").
		Return(&storage.UploadResult{Key: "k1", URL: "https://cdn.test/k1"}, nil).Once()
	store.On("Upload", mock.Anything, "application/octet-stream").
		Return(nil, errors.New("bucket unavailable")).Once()
	store.On("Delete", "k1").Return(nil).Once()
	router := s.newRouter(store)
	event := s.seedEvent(domain.NewEventSettings(uuid.Nil))

	body, contentType := contributionForm(event.ID.String(),
		formFile{"photos", "a.jpg", "a"}, formFile{"photos", "b.jpg", "b"})
	w := s.do(router, http.MethodPost, "/api/v1/guest-posts", body, contentType, "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(errorMessage(w), "Error processing photo b.jpg")
	store.AssertExpectations(s.T())

	var media int64
	s.db.Model(&domain.MediaFile{}).Count(&media)
	s.Zero(media)
}

func (s *APISuite) TestAllowance() {
	settings := domain.NewEventSettings(uuid.Nil)
	event := s.seedEvent(settings)
	s.Require().Equal(http.StatusCreated, s.submit(event, formFile{"photos", "a.jpg", "a"}).Code)

	w := s.do(s.router, http.MethodGet, "/api/v1/events/"+event.ID.String()+"/allowance?phone=010-1234-5678", nil, "", "")
	s.Equal(http.StatusOK, w.Code)
	data := decode(w)["data"].(map[string]interface{})
	s.EqualValues(5, data["limit"])
	s.EqualValues(1, data["used"])
	s.EqualValues(4, data["remaining"])

	w = s.do(s.router, http.MethodGet, "/api/v1/events/"+event.ID.String()+"/allowance", nil, "", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

// --- Event access ---

func (s *APISuite) TestAccessByCode() {
	event := s.seedEvent(nil, func(e *domain.Event) { e.IsPublic = false })

	w := s.do(s.router, http.MethodGet, "/api/v1/events/access?code="+strings.ToLower(*event.ContributorCode), nil, "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(event.ID.String(), decode(w)["data"].(map[string]interface{})["id"])

	w = s.do(s.router, http.MethodGet, "/api/v1/events/access?code=NOPE0000", nil, "", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestGuestView_PrivateForbidden() {
	private := s.seedEvent(nil, func(e *domain.Event) { e.IsPublic = false })
	public := s.seedEvent(nil)

	w := s.do(s.router, http.MethodGet, "/api/v1/events/"+private.ID.String()+"/guest-view", nil, "", "")
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(s.router, http.MethodGet, "/api/v1/events/"+public.ID.String()+"/guest-view", nil, "", "")
	s.Equal(http.StatusOK, w.Code)
}

// --- Gallery ---

func (s *APISuite) TestGallery() {
	event := s.seedEvent(domain.NewEventSettings(uuid.Nil))
	s.Require().Equal(http.StatusCreated, s.submit(event, formFile{"photos", "a.jpg", "a"}).Code)
	s.Require().Equal(http.StatusCreated, s.submit(event, formFile{"videos", "clip.mp4", "v"}).Code)

	w := s.do(s.router, http.MethodGet, "/api/v1/public-events/"+event.ID.String()+"/posts", nil, "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Len(decode(w)["data"], 2)

	w = s.do(s.router, http.MethodGet, "/api/v1/public-events/"+event.ID.String()+"/media?type=video", nil, "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Len(decode(w)["data"], 1)

	w = s.do(s.router, http.MethodGet, "/api/v1/public-events/"+event.ID.String()+"/media?type=gif", nil, "", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestGallery_PrivateNeedsCode() {
	event := s.seedEvent(nil, func(e *domain.Event) { e.IsPublic = false })
	path := "/api/v1/public-events/" + event.ID.String() + "/posts"

	s.Equal(http.StatusForbidden, s.do(s.router, http.MethodGet, path, nil, "", "").Code)
	s.Equal(http.StatusOK, s.do(s.router, http.MethodGet, path+"?code="+*event.ContributorCode, nil, "", "").Code)
}

// --- Moderation ---

func (s *APISuite) TestModeration_RequiresToken() {
	event := s.seedEvent(nil)

	w := s.do(s.router, http.MethodGet, "/api/v1/host/events/"+event.ID.String()+"/posts", nil, "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestModeration_ApproveFlow() {
	settings := domain.NewEventSettings(uuid.Nil)
	settings.RequireApproval = true
	event := s.seedEvent(settings)

	w := s.submit(event, formFile{"photos", "a.jpg", "a"})
	s.Require().Equal(http.StatusCreated, w.Code)
	postID := decode(w)["data"].(map[string]interface{})["id"].(string)

	gallery := "/api/v1/public-events/" + event.ID.String() + "/posts"
	s.Len(decode(s.do(s.router, http.MethodGet, gallery, nil, "", ""))["data"], 0)

	token, err := s.jwtManager.GenerateToken(hostID, "Host")
	s.Require().NoError(err)

	w = s.do(s.router, http.MethodGet, "/api/v1/host/events/"+event.ID.String()+"/posts", nil, "", token)
	s.Equal(http.StatusOK, w.Code)
	s.Len(decode(w)["data"], 1)

	w = s.do(s.router, http.MethodPost, "/api/v1/host/posts/"+postID+"/approve", nil, "", token)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	data := decode(w)["data"].(map[string]interface{})
	s.Equal(true, data["is_approved"])

	s.Len(decode(s.do(s.router, http.MethodGet, gallery, nil, "", ""))["data"], 1)
}

func (s *APISuite) TestModeration_OtherHostForbidden() {
	event := s.seedEvent(nil)
	w := s.submit(event)
	s.Require().Equal(http.StatusCreated, w.Code)
	postID := decode(w)["data"].(map[string]interface{})["id"].(string)

	token, err := s.jwtManager.GenerateToken("someone-else", "Intruder")
	s.Require().NoError(err)

	w = s.do(s.router, http.MethodPost, "/api/v1/host/posts/"+postID+"/reject", nil, "", token)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(s.router, http.MethodPost, "/api/v1/host/media/"+uuid.NewString()+"/approve", nil, "", token)
	s.Equal(http.StatusNotFound, w.Code)
}
