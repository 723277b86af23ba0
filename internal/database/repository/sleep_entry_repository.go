package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nightstay/backend-go/internal/database/models"
)

// SleepEntryRepository defines the interface for sleep entry data operations.
// Dates are YYYY-MM-DD keys, so text comparison orders them chronologically.
type SleepEntryRepository interface {
	Upsert(ctx context.Context, ownerID uint, date string, locationID uuid.UUID) (*models.SleepEntry, error)
	FindByDate(ctx context.Context, ownerID uint, date string) (*models.SleepEntry, error)
	FindRange(ctx context.Context, ownerID uint, from, to string) ([]models.SleepEntry, error)
	Delete(ctx context.Context, ownerID uint, date string) error
	CountByLocation(ctx context.Context, ownerID uint, from, to string) ([]models.LocationNights, error)
}

type sleepEntryRepository struct {
	db *gorm.DB
}

// NewSleepEntryRepository creates a new sleep entry repository instance
func NewSleepEntryRepository(db *gorm.DB) SleepEntryRepository {
	return &sleepEntryRepository{db: db}
}

// Upsert records that the owner slept at locationID on date. An existing entry for the
// same day is repointed by the same INSERT ... ON CONFLICT statement, so two concurrent
// calls for one day can never produce two rows.
func (r *sleepEntryRepository) Upsert(ctx context.Context, ownerID uint, date string, locationID uuid.UUID) (*models.SleepEntry, error) {
	var stored models.SleepEntry

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var location models.Location
		if err := tx.Where("id = ? AND user_id = ?", locationID, ownerID).First(&location).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		entry := models.SleepEntry{
			UserID:     ownerID,
			LocationID: locationID,
			Date:       date,
		}
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{"location_id", "updated_at"}),
			}).
			Create(&entry).Error; err != nil {
			return err
		}

		// On conflict the generated id was discarded, so read back the stored row.
		return tx.Preload("Location").
			Where("user_id = ? AND date = ?", ownerID, date).
			First(&stored).Error
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *sleepEntryRepository) FindByDate(ctx context.Context, ownerID uint, date string) (*models.SleepEntry, error) {
	var entry models.SleepEntry
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("user_id = ? AND date = ?", ownerID, date).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindRange returns entries with from <= date <= to, newest first
func (r *sleepEntryRepository) FindRange(ctx context.Context, ownerID uint, from, to string) ([]models.SleepEntry, error) {
	entries := []models.SleepEntry{}
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("user_id = ? AND date >= ? AND date <= ?", ownerID, from, to).
		Order("date DESC").
		Find(&entries).Error
	return entries, err
}

func (r *sleepEntryRepository) Delete(ctx context.Context, ownerID uint, date string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", ownerID, date).
		Delete(&models.SleepEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// CountByLocation returns the number of nights per location within [from, to].
// Locations without entries are absent from the result.
func (r *sleepEntryRepository) CountByLocation(ctx context.Context, ownerID uint, from, to string) ([]models.LocationNights, error) {
	var rows []models.LocationNights
	err := r.db.WithContext(ctx).Model(&models.SleepEntry{}).
		Select("location_id, COUNT(*) AS nights").
		Where("user_id = ? AND date >= ? AND date <= ?", ownerID, from, to).
		Group("location_id").
		Scan(&rows).Error
	return rows, err
}

// Repository errors
var (
	ErrEntryNotFound = errors.New("sleep entry not found")
)
