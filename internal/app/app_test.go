package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbuddy/backend/internal/app"
	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/pkg/config"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

func TestNewServices_MissingKeysFailAtLookup(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_MAPS_KEY", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	svcs := app.NewServices(context.Background(), cfg)
	require.NotNil(t, svcs.Finder)
	require.NotNil(t, svcs.Prediction)

	symptoms, lat, lng := "fever", 12.9, 77.6
	_, err = svcs.Finder.FindDoctors(context.Background(), entities.LookupRequest{
		Symptoms: &symptoms, Lat: &lat, Lng: &lng,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}
