package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/healthbuddy/backend/internal/application/services"
	"github.com/healthbuddy/backend/internal/domain/entities"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

// Mocks

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, symptoms string) (string, error) {
	args := m.Called(ctx, symptoms)
	return args.String(0), args.Error(1)
}

type MockPlacesProvider struct {
	mock.Mock
}

func (m *MockPlacesProvider) NearbyDoctors(ctx context.Context, lat, lng float64, specialization string) ([]entities.PlaceCandidate, error) {
	args := m.Called(ctx, lat, lng, specialization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PlaceCandidate), args.Error(1)
}

func (m *MockPlacesProvider) PlaceDetails(ctx context.Context, placeID string) (*entities.PlaceDetails, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlaceDetails), args.Error(1)
}

// Helpers

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func lookup(symptoms string, lat, lng float64) entities.LookupRequest {
	return entities.LookupRequest{Symptoms: strPtr(symptoms), Lat: floatPtr(lat), Lng: floatPtr(lng)}
}

// Tests

func TestDoctorFinderService_FindDoctors_MissingFields(t *testing.T) {
	cases := map[string]entities.LookupRequest{
		"no symptoms":    {Lat: floatPtr(12.9), Lng: floatPtr(77.6)},
		"empty symptoms": {Symptoms: strPtr(""), Lat: floatPtr(12.9), Lng: floatPtr(77.6)},
		"no lat":         {Symptoms: strPtr("chest pain"), Lng: floatPtr(77.6)},
		"no lng":         {Symptoms: strPtr("chest pain"), Lat: floatPtr(12.9)},
		"zero lat":       {Symptoms: strPtr("chest pain"), Lat: floatPtr(0), Lng: floatPtr(77.6)},
		"empty body":     {},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			classifier := new(MockClassifier)
			placesProvider := new(MockPlacesProvider)
			service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

			resp, err := service.FindDoctors(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
			classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
			placesProvider.AssertNotCalled(t, "NearbyDoctors", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDoctorFinderService_FindDoctors_ZeroResults(t *testing.T) {
	classifier := new(MockClassifier)
	placesProvider := new(MockPlacesProvider)
	service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

	classifier.On("Classify", mock.Anything, "rash").Return("dermatologist", nil)
	placesProvider.On("NearbyDoctors", mock.Anything, 12.9, 77.6, "dermatologist").Return([]entities.PlaceCandidate{}, nil)

	resp, err := service.FindDoctors(context.Background(), lookup("rash", 12.9, 77.6))

	require.NoError(t, err)
	assert.Equal(t, "dermatologist", resp.Specialization)
	assert.NotNil(t, resp.Doctors)
	assert.Empty(t, resp.Doctors)
	placesProvider.AssertNotCalled(t, "PlaceDetails", mock.Anything, mock.Anything)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"specialization":"dermatologist","doctors":[]}`, string(body))
}

func TestDoctorFinderService_FindDoctors_PreservesSearchOrder(t *testing.T) {
	classifier := new(MockClassifier)
	placesProvider := new(MockPlacesProvider)
	service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

	classifier.On("Classify", mock.Anything, "headache").Return("neurologist", nil)
	placesProvider.On("NearbyDoctors", mock.Anything, 12.9, 77.6, "neurologist").Return([]entities.PlaceCandidate{
		{PlaceID: "P1"}, {PlaceID: "P2"}, {PlaceID: "P3"},
	}, nil)
	// The first candidate answers last; order must still follow the search.
	placesProvider.On("PlaceDetails", mock.Anything, "P1").
		After(30*time.Millisecond).
		Return(&entities.PlaceDetails{PlaceID: "P1", Name: "Dr. One"}, nil).Once()
	placesProvider.On("PlaceDetails", mock.Anything, "P2").
		After(10*time.Millisecond).
		Return(&entities.PlaceDetails{PlaceID: "P2", Name: "Dr. Two"}, nil).Once()
	placesProvider.On("PlaceDetails", mock.Anything, "P3").
		Return(&entities.PlaceDetails{PlaceID: "P3", Name: "Dr. Three"}, nil).Once()

	resp, err := service.FindDoctors(context.Background(), lookup("headache", 12.9, 77.6))

	require.NoError(t, err)
	require.Len(t, resp.Doctors, 3)
	assert.Equal(t, "P1", resp.Doctors[0].PlaceID)
	assert.Equal(t, "P2", resp.Doctors[1].PlaceID)
	assert.Equal(t, "P3", resp.Doctors[2].PlaceID)
	placesProvider.AssertNumberOfCalls(t, "PlaceDetails", 3)
}

func TestDoctorFinderService_FindDoctors_OneDetailsFailureFailsAll(t *testing.T) {
	classifier := new(MockClassifier)
	placesProvider := new(MockPlacesProvider)
	service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

	classifier.On("Classify", mock.Anything, "knee pain").Return("orthopedic", nil)
	placesProvider.On("NearbyDoctors", mock.Anything, 12.9, 77.6, "orthopedic").Return([]entities.PlaceCandidate{
		{PlaceID: "P1"}, {PlaceID: "P2"},
	}, nil)
	placesProvider.On("PlaceDetails", mock.Anything, "P1").
		Return(&entities.PlaceDetails{PlaceID: "P1", Name: "Dr. Bone"}, nil)
	placesProvider.On("PlaceDetails", mock.Anything, "P2").
		Return(nil, apperrors.NewExternalError("places request failed", errors.New("connection reset")))

	resp, err := service.FindDoctors(context.Background(), lookup("knee pain", 12.9, 77.6))

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
	assert.Equal(t, "connection reset", apperrors.DetailsOf(err))
}

func TestDoctorFinderService_FindDoctors_ClassifierFailure(t *testing.T) {
	classifier := new(MockClassifier)
	placesProvider := new(MockPlacesProvider)
	service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

	classifier.On("Classify", mock.Anything, "cough").
		Return("", apperrors.NewExternalError("specialization classification failed", errors.New("API key not valid")))

	resp, err := service.FindDoctors(context.Background(), lookup("cough", 12.9, 77.6))

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
	placesProvider.AssertNotCalled(t, "NearbyDoctors", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDoctorFinderService_FindDoctors_NearbyStatusFailure(t *testing.T) {
	classifier := new(MockClassifier)
	placesProvider := new(MockPlacesProvider)
	service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

	payload := json.RawMessage(`{"status":"OVER_QUERY_LIMIT","results":[]}`)
	classifier.On("Classify", mock.Anything, "fever").Return("physician", nil)
	placesProvider.On("NearbyDoctors", mock.Anything, 12.9, 77.6, "physician").
		Return(nil, apperrors.NewUpstreamStatusError("Google Places API (Nearby Search) failed", payload))

	_, err := service.FindDoctors(context.Background(), lookup("fever", 12.9, 77.6))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUpstreamStatus, apperrors.TypeOf(err))
	assert.Equal(t, payload, apperrors.DetailsOf(err))
	placesProvider.AssertNotCalled(t, "PlaceDetails", mock.Anything, mock.Anything)
}

func TestDoctorFinderService_FindDoctors_ChestPainScenario(t *testing.T) {
	classifier := new(MockClassifier)
	placesProvider := new(MockPlacesProvider)
	service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

	classifier.On("Classify", mock.Anything, "chest pain").Return("cardiologist", nil)
	placesProvider.On("NearbyDoctors", mock.Anything, 12.9, 77.6, "cardiologist").
		Return([]entities.PlaceCandidate{{PlaceID: "P1"}}, nil)
	placesProvider.On("PlaceDetails", mock.Anything, "P1").Return(&entities.PlaceDetails{
		PlaceID:  "P1",
		Name:     "Dr. A",
		Vicinity: "Main St",
		Rating:   floatPtr(4.5),
	}, nil)

	resp, err := service.FindDoctors(context.Background(), lookup("chest pain", 12.9, 77.6))
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "specialization": "cardiologist",
  "doctors": [{
    "place_id": "P1",
    "name": "Dr. A",
    "address": "Main St",
    "phone": null,
    "website": null,
    "opening_hours": null,
    "rating": 4.5
  }]
}`, string(body))
}

func TestAssembleDoctors(t *testing.T) {
	candidates := []entities.PlaceCandidate{{PlaceID: "P1"}, {PlaceID: "P2"}}
	details := []*entities.PlaceDetails{
		{
			Name:             "Dr. Full",
			Vicinity:         "1 High St",
			PhoneNumber:      strPtr("0123"),
			Website:          strPtr("https://full.example.com"),
			Rating:           floatPtr(4.9),
			UserRatingsTotal: intPtr(210),
			Location:         &entities.LatLng{Lat: 1.5, Lng: 2.5},
			OpeningHours:     json.RawMessage(`{"open_now":false}`),
		},
		{
			PlaceID:      "P2",
			Name:         "Dr. Sparse",
			PhoneNumber:  strPtr(""),
			OpeningHours: json.RawMessage(`null`),
		},
	}

	doctors := services.AssembleDoctors(candidates, details)

	require.Len(t, doctors, 2)
	assert.Equal(t, "P1", doctors[0].PlaceID, "falls back to the search result's place id")
	assert.Equal(t, "0123", *doctors[0].Phone)
	assert.Equal(t, 210, *doctors[0].TotalRatings)
	assert.JSONEq(t, `{"open_now":false}`, string(doctors[0].OpeningHours))

	assert.Nil(t, doctors[1].Phone)
	assert.Nil(t, doctors[1].Website)
	assert.Nil(t, doctors[1].OpeningHours)
	assert.Nil(t, doctors[1].Rating)
	assert.Nil(t, doctors[1].Location)
}

func TestDoctorFinderService_FindDoctors_WhitespaceSymptomsPassThrough(t *testing.T) {
	classifier := new(MockClassifier)
	placesProvider := new(MockPlacesProvider)
	service := services.NewDoctorFinderService(classifier, placesProvider, time.Second)

	classifier.On("Classify", mock.Anything, "   ").Return("General Practitioner", nil)
	placesProvider.On("NearbyDoctors", mock.Anything, 12.9, 77.6, "General Practitioner").
		Return([]entities.PlaceCandidate{}, nil)

	resp, err := service.FindDoctors(context.Background(), lookup("   ", 12.9, 77.6))

	require.NoError(t, err)
	assert.Equal(t, "General Practitioner", resp.Specialization)
	assert.Empty(t, resp.Doctors)
	classifier.AssertExpectations(t)
}
