package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type DirectoryGormRepository struct {
	db *gorm.DB
}

var _ domain.Directory = (*DirectoryGormRepository)(nil)

func NewDirectoryGormRepository(db *gorm.DB) *DirectoryGormRepository {
	return &DirectoryGormRepository{db: db}
}

func (r *DirectoryGormRepository) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	var p models.Provider
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "provider_not_found")
	}
	return &p, nil
}

func (r *DirectoryGormRepository) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	var s models.Shop
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "shop_not_found")
	}
	return &s, nil
}

func (r *DirectoryGormRepository) GetService(ctx context.Context, id string) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "service_not_found")
	}
	return &s, nil
}

func lookupError(err error, notFoundCode string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.NotFound(notFoundCode)
	}
	return httperr.Upstream("directory_failure", err)
}
