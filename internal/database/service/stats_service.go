package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/datekey"
)

// PresetDays are the quick ranges offered by the dashboard
var PresetDays = []int{30, 60, 90}

// StatsService defines the interface for night count aggregation
type StatsService interface {
	Summarize(ctx context.Context, ownerID uint, from, to string) (*Summary, error)
	Presets(now time.Time) []Preset
	RangeBack(now time.Time, days int) (datekey.Range, error)
}

// Summary is the night count per location over a range
type Summary struct {
	Range     datekey.Range   `json:"range"`
	Total     int64           `json:"total"`
	Locations []LocationStats `json:"locations"`
}

// LocationStats is one location's share of a Summary
type LocationStats struct {
	LocationID uuid.UUID `json:"location_id"`
	Name       string    `json:"name"`
	Color      *string   `json:"color"`
	Nights     int64     `json:"nights"`
}

// Preset is a named range ending today
type Preset struct {
	Days  int           `json:"days"`
	Label string        `json:"label"`
	Range datekey.Range `json:"range"`
}

type statsService struct {
	locationRepo repository.LocationRepository
	entryRepo    repository.SleepEntryRepository
	loc          *time.Location
	logger       *slog.Logger
}

// NewStatsService creates a new stats service. loc decides which day "today" is.
func NewStatsService(
	locationRepo repository.LocationRepository,
	entryRepo repository.SleepEntryRepository,
	loc *time.Location,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		locationRepo: locationRepo,
		entryRepo:    entryRepo,
		loc:          loc,
		logger:       logger,
	}
}

// Summarize counts nights per location. Every location of the owner is listed, oldest
// first, including those with zero nights.
func (s *statsService) Summarize(ctx context.Context, ownerID uint, from, to string) (*Summary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	locations, err := s.locationRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	counts, err := s.entryRepo.CountByLocation(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	nights := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		nights[c.LocationID] = c.Nights
	}

	summary := &Summary{
		Range:     datekey.Range{From: from, To: to},
		Locations: make([]LocationStats, 0, len(locations)),
	}
	for _, l := range locations {
		n := nights[l.ID]
		summary.Total += n
		summary.Locations = append(summary.Locations, LocationStats{
			LocationID: l.ID,
			Name:       l.Name,
			Color:      l.Color,
			Nights:     n,
		})
	}

	s.logger.Debug("📊 [StatsService] Summary built", "user_id", ownerID, "from", from, "to", to, "total", summary.Total)
	return summary, nil
}

func (s *statsService) Presets(now time.Time) []Preset {
	presets := make([]Preset, 0, len(PresetDays))
	for _, days := range PresetDays {
		r, _ := s.RangeBack(now, days)
		presets = append(presets, Preset{
			Days:  days,
			Label: presetLabel(days),
			Range: r,
		})
	}
	return presets
}

// RangeBack returns the range ending on now's day in the service location
func (s *statsService) RangeBack(now time.Time, days int) (datekey.Range, error) {
	if days < 0 {
		return datekey.Range{}, invalidInput("days must not be negative")
	}
	return datekey.RangeBackFrom(now.In(s.loc), days), nil
}

func presetLabel(days int) string {
	return fmt.Sprintf("Last %d days", days)
}
