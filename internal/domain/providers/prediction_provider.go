package providers

import (
	"context"

	"github.com/healthbuddy/backend/internal/domain/entities"
)

// DiseasePredictor calls the hosted disease prediction interface
type DiseasePredictor interface {
	Predict(ctx context.Context, req entities.PredictionRequest) (*entities.PredictionResult, error)
}
