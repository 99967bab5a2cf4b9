package ports

import (
	"context"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

type LocationRepository interface {
	FindByZip(ctx context.Context, zip string) (*domain.ZipLocation, error)
	FindByText(ctx context.Context, text string, limit int) ([]*domain.ZipLocation, error)
}

// LocationCache is an optional read-through cache for zip lookups.
type LocationCache interface {
	Get(ctx context.Context, zip string) (*domain.ZipLocation, bool, error)
	Set(ctx context.Context, loc *domain.ZipLocation) error
}

type LocationService interface {
	FindLocationByZip(ctx context.Context, zip string) (*domain.ZipLocation, error)
	FindLocationsByText(ctx context.Context, text string) ([]*domain.ZipLocation, error)
}
