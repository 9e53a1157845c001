package errors_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(apperrors.NewValidationError("Missing fields")))
	wrapped := fmt.Errorf("lookup: %w", apperrors.NewExternalError("places request failed", nil))
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(wrapped))
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(fmt.Errorf("plain")))
}

func TestDetailsOf_PrefersUpstreamPayload(t *testing.T) {
	payload := json.RawMessage(`{"status":"REQUEST_DENIED"}`)
	err := fmt.Errorf("lookup: %w", apperrors.NewUpstreamStatusError("Google Places API (Nearby Search) failed", payload))

	assert.Equal(t, payload, apperrors.DetailsOf(err))
}

func TestDetailsOf_FallsBackToRootMessage(t *testing.T) {
	err := apperrors.NewExternalError("classification failed", fmt.Errorf("quota exceeded"))
	assert.Equal(t, "quota exceeded", apperrors.DetailsOf(err))

	assert.Equal(t, "google maps api key is required",
		apperrors.DetailsOf(apperrors.NewExternalError("google maps api key is required", nil)))
	assert.Nil(t, apperrors.DetailsOf(nil))
}
