package migration

import (
	"strings"
	"testing"
	"time"

	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRun_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	var packages []domain.Package
	require.NoError(t, db.Order("price").Find(&packages).Error)
	require.Len(t, packages, 4)

	names := make([]string, 0, len(packages))
	for _, p := range packages {
		names = append(names, p.Name)
		assert.True(t, p.IsActive)
	}
	assert.Equal(t, []string{"Basic", "Standard", "Premium", "Enterprise"}, names)
	assert.Equal(t, 200, *packages[0].MaxPhotos)
	assert.Equal(t, 250, *packages[3].MaxVideos)
	assert.Nil(t, packages[0].MaxPosts)
	assert.Nil(t, packages[0].MaxVoice)
}

func TestSeedPackages_CountsCreatedOnly(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Schema(db))
	repo := repository.NewPackageRepository(db)

	created, err := SeedPackages(repo)
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	created, err = SeedPackages(repo)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestGenerateContributorCodes(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Schema(db))

	existing := "TAKEN234"
	events := []*domain.Event{
		{HostID: "h", Title: "a", EventDate: time.Now()},
		{HostID: "h", Title: "b", EventDate: time.Now()},
		{HostID: "h", Title: "c", EventDate: time.Now(), ContributorCode: &existing},
	}
	for _, e := range events {
		require.NoError(t, db.Create(e).Error)
	}

	repo := repository.NewEventRepository(db)
	assigned, err := GenerateContributorCodes(repo)
	require.NoError(t, err)
	assert.Equal(t, 2, assigned)

	var stored []domain.Event
	require.NoError(t, db.Find(&stored).Error)
	seen := map[string]bool{}
	for _, e := range stored {
		require.NotNil(t, e.ContributorCode)
		assert.False(t, seen[*e.ContributorCode])
		seen[*e.ContributorCode] = true
	}
	assert.True(t, seen[existing])

	assigned, err = GenerateContributorCodes(repo)
	require.NoError(t, err)
	assert.Zero(t, assigned)
}

func TestNewContributorCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewContributorCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		assert.Equal(t, strings.ToUpper(code), code)
		for _, r := range code {
			assert.Contains(t, codeAlphabet, string(r))
		}
	}
}
