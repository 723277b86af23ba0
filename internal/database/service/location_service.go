package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/repository"
)

const maxLocationNameLength = 100

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// LocationService defines the interface for location business logic
type LocationService interface {
	List(ctx context.Context, ownerID uint) ([]models.Location, error)
	Create(ctx context.Context, ownerID uint, name string, color *string) (*models.Location, error)
	Update(ctx context.Context, ownerID uint, id uuid.UUID, name, color *string) (*models.Location, error)
	Delete(ctx context.Context, ownerID uint, id uuid.UUID) error
}

type locationService struct {
	locationRepo repository.LocationRepository
	logger       *slog.Logger
}

// NewLocationService creates a new location service instance
func NewLocationService(locationRepo repository.LocationRepository, logger *slog.Logger) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		logger:       logger,
	}
}

func (s *locationService) List(ctx context.Context, ownerID uint) ([]models.Location, error) {
	return s.locationRepo.ListByOwner(ctx, ownerID)
}

func (s *locationService) Create(ctx context.Context, ownerID uint, name string, color *string) (*models.Location, error) {
	name, err := validateLocationName(name)
	if err != nil {
		return nil, err
	}
	color, err = normalizeColor(color)
	if err != nil {
		return nil, err
	}

	location := &models.Location{
		UserID: ownerID,
		Name:   name,
		Color:  color,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		s.logger.Error("❌ [LocationService] Failed to create location", "user_id", ownerID, "error", err)
		return nil, err
	}

	s.logger.Info("✅ [LocationService] Location created", "user_id", ownerID, "location_id", location.ID)
	return location, nil
}

// Update changes only the fields that are present. An empty color clears it.
func (s *locationService) Update(ctx context.Context, ownerID uint, id uuid.UUID, name, color *string) (*models.Location, error) {
	location, err := s.locationRepo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed, err := validateLocationName(*name)
		if err != nil {
			return nil, err
		}
		location.Name = trimmed
	}
	if color != nil {
		normalized, err := normalizeColor(color)
		if err != nil {
			return nil, err
		}
		location.Color = normalized
	}

	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [LocationService] Location updated", "user_id", ownerID, "location_id", id)
	return location, nil
}

func (s *locationService) Delete(ctx context.Context, ownerID uint, id uuid.UUID) error {
	if err := s.locationRepo.DeleteUnused(ctx, ownerID, id); err != nil {
		s.logger.Warn("⚠️ [LocationService] Location not deleted", "user_id", ownerID, "location_id", id, "error", err)
		return err
	}

	s.logger.Info("🗑️ [LocationService] Location deleted", "user_id", ownerID, "location_id", id)
	return nil
}

func validateLocationName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("name is required")
	}
	if len([]rune(name)) > maxLocationNameLength {
		return "", invalidInput(fmt.Sprintf("name must be at most %d characters", maxLocationNameLength))
	}
	return name, nil
}

func normalizeColor(color *string) (*string, error) {
	if color == nil {
		return nil, nil
	}
	c := strings.TrimSpace(*color)
	if c == "" {
		return nil, nil
	}
	if !colorPattern.MatchString(c) {
		return nil, invalidInput("color must be a hex value such as #3b82f6")
	}
	return &c, nil
}
