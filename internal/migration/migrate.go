package migration

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/repository"
	pkglogger "github.com/neberku/neberku-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// contributor codes avoid look-alike characters (0/O, 1/I)
const (
	codeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength     = 8
	codeMaxRetries = 10
)

// Run creates or updates all tables, seeds the package catalog and fills missing contributor codes.
func Run(db *gorm.DB) error {
	if err := Schema(db); err != nil {
		return err
	}
	if _, err := SeedPackages(repository.NewPackageRepository(db)); err != nil {
		return err
	}
	_, err := GenerateContributorCodes(repository.NewEventRepository(db))
	return err
}

// Schema runs AutoMigrate for every table
func Schema(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Package{},
		&domain.Event{},
		&domain.EventSettings{},
		&domain.Guest{},
		&domain.GuestPost{},
		&domain.MediaFile{},
	)
}

// DefaultPackages the catalog offered to hosts
func DefaultPackages() []domain.Package {
	intPtr := func(v int) *int { return &v }

	return []domain.Package{
		{
			Name: "Basic", Description: "Perfect for small gatherings", Price: 9.99,
			MaxGuests: intPtr(50), MaxPhotos: intPtr(200), MaxVideos: intPtr(20),
			Features: datatypes.JSONSlice[string]{"Guest wishes", "Photo sharing", "Short videos"},
		},
		{
			Name: "Standard", Description: "Great for weddings and birthdays", Price: 19.99,
			MaxGuests: intPtr(100), MaxPhotos: intPtr(500), MaxVideos: intPtr(50),
			Features: datatypes.JSONSlice[string]{"Guest wishes", "Photo sharing", "Video sharing", "Voice messages"},
		},
		{
			Name: "Premium", Description: "For large celebrations", Price: 39.99,
			MaxGuests: intPtr(200), MaxPhotos: intPtr(1000), MaxVideos: intPtr(100),
			Features: datatypes.JSONSlice[string]{"Guest wishes", "Photo sharing", "Video sharing", "Voice messages", "Moderation"},
		},
		{
			Name: "Enterprise", Description: "Corporate events and festivals", Price: 79.99,
			MaxGuests: intPtr(500), MaxPhotos: intPtr(2500), MaxVideos: intPtr(250),
			Features: datatypes.JSONSlice[string]{"Guest wishes", "Photo sharing", "Video sharing", "Voice messages", "Moderation", "Priority support"},
		},
	}
}

// SeedPackages upserts the default catalog by name and returns how many rows were created
func SeedPackages(repo repository.PackageRepository) (int, error) {
	created := 0
	for _, pkg := range DefaultPackages() {
		pkg := pkg
		pkg.IsActive = true
		isNew, err := repo.Upsert(&pkg)
		if err != nil {
			return created, fmt.Errorf("seed package %s: %w", pkg.Name, err)
		}
		if isNew {
			created++
			pkglogger.Info("package created: %s", pkg.Name)
		}
	}
	return created, nil
}

// GenerateContributorCodes assigns a unique code to every event that has none
func GenerateContributorCodes(repo repository.EventRepository) (int, error) {
	events, err := repo.FindWithoutContributorCode()
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, event := range events {
		code, err := uniqueCode(repo)
		if err != nil {
			return assigned, fmt.Errorf("event %s: %w", event.ID, err)
		}
		if err := repo.SetContributorCode(event.ID, code); err != nil {
			return assigned, err
		}
		assigned++
	}
	return assigned, nil
}

func uniqueCode(repo repository.EventRepository) (string, error) {
	for i := 0; i < codeMaxRetries; i++ {
		code, err := NewContributorCode()
		if err != nil {
			return "", err
		}
		exists, err := repo.ContributorCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unique contributor code after %d attempts", codeMaxRetries)
}

// NewContributorCode returns a random upper-case code
func NewContributorCode() (string, error) {
	size := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
