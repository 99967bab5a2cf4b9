package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

const locationTextLimit = 20

// LocationService resolves zip codes, reading through cache when one is set.
type LocationService struct {
	locations ports.LocationRepository
	cache     ports.LocationCache
	metrics   ports.Recorder
	logger    zerolog.Logger
}

// NewLocationService accepts a nil cache.
func NewLocationService(locations ports.LocationRepository, cache ports.LocationCache, recorder ports.Recorder, logger zerolog.Logger) *LocationService {
	return &LocationService{locations: locations, cache: cache, metrics: recorder, logger: logger}
}

func (s *LocationService) FindLocationByZip(ctx context.Context, zip string) (*domain.ZipLocation, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return nil, domain.BadRequest("zip is required")
	}

	if s.cache != nil {
		loc, ok, err := s.cache.Get(ctx, zip)
		switch {
		case err != nil:
			s.metrics.LocationCache("error")
			s.logger.Warn().Err(err).Str("zip", zip).Msg("location cache read failed, querying store")
		case ok:
			s.metrics.LocationCache("hit")
			return loc, nil
		default:
			s.metrics.LocationCache("miss")
		}
	}

	loc, err := s.locations.FindByZip(ctx, zip)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, loc); err != nil {
			s.logger.Warn().Err(err).Str("zip", zip).Msg("failed to cache location")
		}
	}
	return loc, nil
}

func (s *LocationService) FindLocationsByText(ctx context.Context, text string) ([]*domain.ZipLocation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.BadRequest("text is required")
	}
	return s.locations.FindByText(ctx, text, locationTextLimit)
}
