// Package app wires configuration into the lookup and prediction services
// shared by the HTTP server and the command line tool.
package app

import (
	"context"
	"net/http"

	"github.com/healthbuddy/backend/internal/adapters/providers/places"
	"github.com/healthbuddy/backend/internal/application/services"
	"github.com/healthbuddy/backend/internal/infrastructure/clients/gemini"
	"github.com/healthbuddy/backend/internal/infrastructure/clients/gradio"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	"github.com/healthbuddy/backend/pkg/config"
	"github.com/healthbuddy/backend/pkg/prose"
)

// Services holds the application services built from one Config.
type Services struct {
	Finder     *services.DoctorFinderService
	Prediction *services.PredictionService
}

// NewServices builds the services. Missing API keys do not fail startup;
// each lookup fails at its first external call instead.
func NewServices(ctx context.Context, cfg *config.Config) *Services {
	logger := observability.GetLogger()

	genaiClient, err := gemini.NewClient(ctx, &cfg.Gemini)
	if err != nil {
		logger.Warn().Err(err).Msg("Gemini client unavailable; lookups will fail")
	}
	classifier := gemini.NewClassifier(genaiClient, cfg.Gemini.Model, cfg.Gemini.Timeout)

	if cfg.Places.APIKey == "" {
		logger.Warn().Msg("GOOGLE_MAPS_KEY is not set; lookups will fail")
	}
	placesProvider := places.NewGooglePlacesProviderWithOptions(
		cfg.Places.APIKey,
		cfg.Places.BaseURL,
		&http.Client{Timeout: cfg.Places.Timeout},
	)

	predictor := gradio.NewClient(&cfg.Gradio)

	return &Services{
		Finder:     services.NewDoctorFinderService(classifier, placesProvider, cfg.Lookup.Timeout),
		Prediction: services.NewPredictionService(predictor, prose.MarkdownListExtractor{}),
	}
}
