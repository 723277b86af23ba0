package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nightstay/backend-go/internal/database/models"
)

// LocationRepository defines the interface for location data operations.
// Every method is scoped to an owner; a location of another user is reported as missing.
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	FindByIDForOwner(ctx context.Context, ownerID uint, id uuid.UUID) (*models.Location, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	DeleteUnused(ctx context.Context, ownerID uint, id uuid.UUID) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository instance
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Omit("User").Create(location).Error
}

func (r *locationRepository) FindByIDForOwner(ctx context.Context, ownerID uint, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &location, nil
}

// ListByOwner returns the owner's locations, oldest first
func (r *locationRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Find(&locations).Error
	return locations, err
}

// Update writes name and color of a location the owner holds
func (r *locationRepository) Update(ctx context.Context, location *models.Location) error {
	result := r.db.WithContext(ctx).Model(&models.Location{}).
		Where("id = ? AND user_id = ?", location.ID, location.UserID).
		Updates(map[string]interface{}{
			"name":  location.Name,
			"color": location.Color,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLocationNotFound
	}
	return nil
}

// DeleteUnused removes a location only when no sleep entry references it.
// The check and the delete share one transaction.
func (r *locationRepository) DeleteUnused(ctx context.Context, ownerID uint, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var location models.Location
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&location).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		var entries int64
		if err := tx.Model(&models.SleepEntry{}).
			Where("location_id = ? AND user_id = ?", id, ownerID).
			Count(&entries).Error; err != nil {
			return err
		}
		if entries > 0 {
			return ErrLocationInUse
		}

		err := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Location{}).Error
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrLocationInUse
		}
		return err
	})
}

// Repository errors
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrLocationInUse    = errors.New("location has sleep entries")
)
