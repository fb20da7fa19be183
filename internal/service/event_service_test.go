package service

import (
	"context"
	"strings"
	"testing"

	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_AccessByCode(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent(t, &domain.Package{Name: "x", MaxPhotos: intPtr(200)}, perMediaSettings(),
		func(e *domain.Event) { e.IsPublic = false })
	env.seedMedia(t, event, "0911", domain.MediaPhoto, 2, true)

	view, err := env.events.AccessByCode(" " + strings.ToLower(*event.ContributorCode) + " ")
	require.NoError(t, err)
	assert.Equal(t, event.ID, view.ID)
	assert.True(t, view.PerMediaQuota)
	assert.Equal(t, 10, view.MaxMediaPerGuest)
	assert.Equal(t, 200, *view.PackageMaxPhotos)
	assert.Nil(t, view.PackageMaxVoice)
	assert.Equal(t, int64(1), view.TotalGuestPosts)
	assert.Equal(t, int64(2), view.TotalMediaFiles)

	_, err = env.events.AccessByCode("WRONG123")
	assert.ErrorIs(t, err, common.ErrInvalidCode)
	_, err = env.events.AccessByCode("")
	assert.ErrorIs(t, err, common.ErrInvalidCode)
}

func TestEventService_GuestView(t *testing.T) {
	env := newTestEnv(t)
	public := env.seedEvent(t, nil, nil)
	private := env.seedEvent(t, nil, nil, func(e *domain.Event) { e.IsPublic = false })

	view, err := env.events.GuestView(public.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.MaxMediaPerGuest)
	assert.False(t, view.PerMediaQuota)

	_, err = env.events.GuestView(private.ID)
	assert.ErrorIs(t, err, common.ErrEventPrivate)
}

func TestGalleryService(t *testing.T) {
	env := newTestEnv(t)
	settings := aggregateSettings(10)
	settings.ShowGuestNames = false
	event := env.seedEvent(t, nil, settings)
	env.seedMedia(t, event, "0911", domain.MediaPhoto, 2, true)
	env.seedMedia(t, event, "0922", domain.MediaVideo, 1, false)
	ctx := context.Background()

	posts, err := env.gallery.Posts(ctx, event.ID, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), posts.Meta.Total)
	require.Len(t, posts.Posts, 1)
	assert.Empty(t, posts.Posts[0].GuestName)
	assert.Len(t, posts.Posts[0].MediaFiles, 2)

	media, err := env.gallery.Media(ctx, event.ID, "", domain.MediaVideo, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, media.Media)

	media, err = env.gallery.Media(ctx, event.ID, "", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), media.Meta.Total)
}

func TestGalleryService_PrivateNeedsCode(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent(t, nil, nil, func(e *domain.Event) { e.IsPublic = false })

	_, err := env.gallery.Posts(context.Background(), event.ID, "", 1, 20)
	assert.ErrorIs(t, err, common.ErrEventPrivate)

	_, err = env.gallery.Posts(context.Background(), event.ID, *event.ContributorCode, 1, 20)
	assert.NoError(t, err)
}
