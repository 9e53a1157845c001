package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

// UpstreamErrorMessage is the error text for failed classification or Places calls.
const UpstreamErrorMessage = "Gemini or Google API error occurred."

const maxLookupBodyBytes = 1 << 20

// DoctorFinder runs a doctor lookup
type DoctorFinder interface {
	FindDoctors(ctx context.Context, req entities.LookupRequest) (*entities.LookupResponse, error)
}

// DoctorHandler handles the doctor lookup API
type DoctorHandler struct {
	finder DoctorFinder
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(finder DoctorFinder) *DoctorHandler {
	return &DoctorHandler{finder: finder}
}

// FindDoctor handles POST /api/find-doctor
func (h *DoctorHandler) FindDoctor(w http.ResponseWriter, r *http.Request) {
	var req entities.LookupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLookupBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.finder.FindDoctors(r.Context(), req)
	if err != nil {
		status, body := lookupFailure(r.Context(), err)
		respondWithJSON(w, status, body)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// lookupFailure maps a lookup error to its HTTP status and body.
func lookupFailure(ctx context.Context, err error) (int, errorResponse) {
	appErr, _ := apperrors.As(err)
	if appErr != nil && appErr.Type == apperrors.ErrorTypeValidation {
		return http.StatusBadRequest, errorResponse{Error: appErr.Message}
	}

	details := apperrors.DetailsOf(err)
	observability.LoggerFromContext(ctx).Error().
		Err(err).
		Interface("details", details).
		Msg("Doctor lookup failed")

	if appErr != nil && appErr.Type == apperrors.ErrorTypeUpstreamStatus {
		return http.StatusInternalServerError, errorResponse{Error: appErr.Message, Details: details}
	}
	return http.StatusInternalServerError, errorResponse{Error: UpstreamErrorMessage, Details: details}
}
