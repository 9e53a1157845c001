package services

import (
	"context"
	"strings"

	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/internal/domain/providers"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
	"github.com/healthbuddy/backend/pkg/prose"
)

// PredictionErrorMessage replaces the prediction output when the AI server cannot be reached.
const PredictionErrorMessage = "Error contacting AI server"

// PredictionService runs the hosted disease prediction and shapes its prose for display.
type PredictionService struct {
	predictor providers.DiseasePredictor
	extractor prose.DoctorExtractor
}

// NewPredictionService creates a new prediction service.
// A nil extractor falls back to the markdown list parser.
func NewPredictionService(predictor providers.DiseasePredictor, extractor prose.DoctorExtractor) *PredictionService {
	if extractor == nil {
		extractor = prose.MarkdownListExtractor{}
	}
	return &PredictionService{
		predictor: predictor,
		extractor: extractor,
	}
}

// Predict validates the input, calls the predictor and builds the view.
// Predictor failures are not returned; they become a single error segment.
func (s *PredictionService) Predict(ctx context.Context, problemText string, lat, lng *float64) (*entities.PredictionView, error) {
	if strings.TrimSpace(problemText) == "" {
		return nil, apperrors.NewValidationError("Please enter your symptoms!")
	}
	if lat == nil || lng == nil {
		return nil, apperrors.NewValidationError("Please fetch your location!")
	}

	result, err := s.predictor.Predict(ctx, entities.PredictionRequest{
		ProblemText: problemText,
		Latitude:    *lat,
		Longitude:   *lng,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Error calling disease prediction interface")
		result = &entities.PredictionResult{Segments: []string{PredictionErrorMessage}}
	}

	return BuildPredictionView(result, s.extractor), nil
}

// BuildPredictionView reads the condition and specialist prose from their fixed positions.
// Results too short to hold both carry their first segment as a plain message.
func BuildPredictionView(result *entities.PredictionResult, extractor prose.DoctorExtractor) *entities.PredictionView {
	view := &entities.PredictionView{Doctors: []prose.Doctor{}}
	if result == nil {
		return view
	}
	view.Segments = result.Segments

	if len(result.Segments) <= entities.SpecialistSegment {
		view.Message = result.Segment(0)
		return view
	}

	specialist := result.Segment(entities.SpecialistSegment)
	view.Condition = prose.StripBold(result.Segment(entities.ConditionSegment))
	view.Specialist = prose.SpecialistLine(specialist)
	if specialist != "" {
		view.Doctors = extractor.Extract(specialist)
	}
	return view
}
