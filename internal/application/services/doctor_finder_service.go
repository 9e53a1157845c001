package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/internal/domain/providers"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

// MissingFieldsMessage is reported for any lookup request lacking a required field.
const MissingFieldsMessage = "Missing fields"

// DoctorFinderService classifies symptoms and looks up matching doctors nearby.
type DoctorFinderService struct {
	classifier providers.SpecializationClassifier
	places     providers.PlacesProvider
	timeout    time.Duration
}

// NewDoctorFinderService creates a new doctor finder service.
// A zero timeout leaves the lookup bounded only by the caller's context.
func NewDoctorFinderService(
	classifier providers.SpecializationClassifier,
	places providers.PlacesProvider,
	timeout time.Duration,
) *DoctorFinderService {
	return &DoctorFinderService{
		classifier: classifier,
		places:     places,
		timeout:    timeout,
	}
}

// ValidateLookupRequest checks that symptoms, lat and lng are all present and non-zero.
func ValidateLookupRequest(req entities.LookupRequest) (string, float64, float64, error) {
	if req.Symptoms == nil || *req.Symptoms == "" ||
		req.Lat == nil || *req.Lat == 0 ||
		req.Lng == nil || *req.Lng == 0 {
		return "", 0, 0, apperrors.NewValidationError(MissingFieldsMessage)
	}
	return *req.Symptoms, *req.Lat, *req.Lng, nil
}

// FindDoctors runs the lookup pipeline: classify, nearby search, then a details
// call per candidate. Any failing details call fails the whole lookup.
func (s *DoctorFinderService) FindDoctors(ctx context.Context, req entities.LookupRequest) (*entities.LookupResponse, error) {
	symptoms, lat, lng, err := ValidateLookupRequest(req)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "doctor_finder.find_doctors")
	defer span.End()

	logger := observability.LoggerFromContext(ctx)
	logger.Info().Str("symptoms", symptoms).Msg("Symptoms received")

	specialization, err := s.classifier.Classify(ctx, symptoms)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to classify symptoms: %w", err)
	}
	logger.Info().Str("specialization", specialization).Msg("Specialization classified")
	observability.SetSpanAttributes(span, attribute.String("specialization", specialization))

	candidates, err := s.places.NearbyDoctors(ctx, lat, lng, specialization)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("nearby search failed: %w", err)
	}
	observability.SetSpanAttributes(span, attribute.Int("places.candidates", len(candidates)))

	if len(candidates) == 0 {
		return &entities.LookupResponse{
			Specialization: specialization,
			Doctors:        []entities.DoctorRecord{},
		}, nil
	}

	details, err := s.fetchDetails(ctx, candidates)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return &entities.LookupResponse{
		Specialization: specialization,
		Doctors:        AssembleDoctors(candidates, details),
	}, nil
}

// fetchDetails issues every details call concurrently and waits for all of them.
// Results keep the candidates' order.
func (s *DoctorFinderService) fetchDetails(ctx context.Context, candidates []entities.PlaceCandidate) ([]*entities.PlaceDetails, error) {
	details := make([]*entities.PlaceDetails, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		g.Go(func() error {
			d, err := s.places.PlaceDetails(gctx, candidate.PlaceID)
			if err != nil {
				return fmt.Errorf("place details for %s failed: %w", candidate.PlaceID, err)
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// AssembleDoctors zips details back into doctor records, index for index.
func AssembleDoctors(candidates []entities.PlaceCandidate, details []*entities.PlaceDetails) []entities.DoctorRecord {
	doctors := make([]entities.DoctorRecord, 0, len(details))
	for i, d := range details {
		if d == nil {
			continue
		}
		placeID := d.PlaceID
		if placeID == "" && i < len(candidates) {
			placeID = candidates[i].PlaceID
		}
		doctors = append(doctors, entities.DoctorRecord{
			PlaceID:      placeID,
			Name:         d.Name,
			Address:      d.Vicinity,
			Phone:        nonEmpty(d.PhoneNumber),
			Website:      nonEmpty(d.Website),
			OpeningHours: nonNullJSON(d.OpeningHours),
			Rating:       d.Rating,
			TotalRatings: d.UserRatingsTotal,
			Location:     d.Location,
		})
	}
	return doctors
}

func nonEmpty(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}

func nonNullJSON(raw []byte) []byte {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
