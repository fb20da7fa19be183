package repository

import (
	"errors"

	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"gorm.io/gorm"
)

// PackageRepository package catalog data access interface
type PackageRepository interface {
	FindByID(id uint64) (*domain.Package, error)
	FindActive() ([]*domain.Package, error)
	// Upsert creates the package or updates the existing row with the same name
	Upsert(pkg *domain.Package) (created bool, err error)
}

type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new PackageRepository
func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) FindByID(id uint64) (*domain.Package, error) {
	var pkg domain.Package
	if err := r.db.Where("id = ?", id).First(&pkg).Error; err != nil {
		return nil, notFound(err, common.ErrPackageNotFound)
	}
	return &pkg, nil
}

func (r *packageRepository) FindActive() ([]*domain.Package, error) {
	var pkgs []*domain.Package
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&pkgs).Error
	return pkgs, err
}

func (r *packageRepository) Upsert(pkg *domain.Package) (bool, error) {
	var existing domain.Package
	err := r.db.Where("name = ?", pkg.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, r.db.Create(pkg).Error
	}
	if err != nil {
		return false, err
	}

	pkg.ID = existing.ID
	pkg.CreatedAt = existing.CreatedAt
	return false, r.db.Save(pkg).Error
}
