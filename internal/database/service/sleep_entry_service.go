package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/datekey"
)

// SleepEntryService defines the interface for sleep entry business logic
type SleepEntryService interface {
	UpsertEntry(ctx context.Context, ownerID uint, date string, locationID uuid.UUID) (*models.SleepEntry, error)
	QueryRange(ctx context.Context, ownerID uint, from, to string) ([]models.SleepEntry, error)
	DeleteEntry(ctx context.Context, ownerID uint, date string) (string, error)
}

type sleepEntryService struct {
	entryRepo repository.SleepEntryRepository
	logger    *slog.Logger
}

// NewSleepEntryService creates a new sleep entry service instance
func NewSleepEntryService(entryRepo repository.SleepEntryRepository, logger *slog.Logger) SleepEntryService {
	return &sleepEntryService{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// UpsertEntry records where the owner slept on date, replacing any earlier choice
func (s *sleepEntryService) UpsertEntry(ctx context.Context, ownerID uint, date string, locationID uuid.UUID) (*models.SleepEntry, error) {
	if date == "" {
		return nil, invalidInput("date is required")
	}
	if !datekey.Valid(date) {
		return nil, invalidInput("date must be a valid YYYY-MM-DD date")
	}
	if locationID == uuid.Nil {
		return nil, invalidInput("location_id is required")
	}

	entry, err := s.entryRepo.Upsert(ctx, ownerID, date, locationID)
	if err != nil {
		if !errors.Is(err, repository.ErrLocationNotFound) {
			s.logger.Error("❌ [SleepEntryService] Failed to save entry", "user_id", ownerID, "date", date, "error", err)
		}
		return nil, err
	}

	s.logger.Info("✅ [SleepEntryService] Entry saved", "user_id", ownerID, "date", date, "location_id", locationID)
	return entry, nil
}

// QueryRange returns the owner's entries in [from, to], newest first
func (s *sleepEntryService) QueryRange(ctx context.Context, ownerID uint, from, to string) ([]models.SleepEntry, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.entryRepo.FindRange(ctx, ownerID, from, to)
}

// DeleteEntry removes the entry for date and returns the removed key
func (s *sleepEntryService) DeleteEntry(ctx context.Context, ownerID uint, date string) (string, error) {
	if date == "" {
		return "", invalidInput("date is required")
	}
	if !datekey.Valid(date) {
		return "", invalidInput("date must be a valid YYYY-MM-DD date")
	}

	if err := s.entryRepo.Delete(ctx, ownerID, date); err != nil {
		return "", err
	}

	s.logger.Info("🗑️ [SleepEntryService] Entry deleted", "user_id", ownerID, "date", date)
	return date, nil
}

// validateRange checks both bounds are present and real days. An inverted range is
// allowed and simply matches nothing.
func validateRange(from, to string) error {
	if from == "" {
		return invalidInput("from is required")
	}
	if to == "" {
		return invalidInput("to is required")
	}
	if !datekey.Valid(from) {
		return invalidInput("from must be a valid YYYY-MM-DD date")
	}
	if !datekey.Valid(to) {
		return invalidInput("to must be a valid YYYY-MM-DD date")
	}
	return nil
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// Service errors
var (
	ErrInvalidInput = errors.New("invalid input")
)
