package providers

import (
	"context"

	"github.com/healthbuddy/backend/internal/domain/entities"
)

// PlacesProvider defines the interface for place search services
type PlacesProvider interface {
	// NearbyDoctors searches for doctor places around a point matching a specialization.
	// An empty slice with a nil error means the search succeeded with no results.
	NearbyDoctors(ctx context.Context, lat, lng float64, specialization string) ([]entities.PlaceCandidate, error)

	// PlaceDetails fetches the detail record for a single place
	PlaceDetails(ctx context.Context, placeID string) (*entities.PlaceDetails, error)
}
