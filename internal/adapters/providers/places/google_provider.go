package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/internal/domain/providers"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

const (
	googlePlacesBaseURL = "https://maps.googleapis.com/maps/api/place"
	defaultHTTPTimeout  = 8 * time.Second

	// SearchRadiusMeters is the fixed nearby search radius
	SearchRadiusMeters = 5000
	doctorPlaceType    = "doctor"
)

// DetailFields is the field mask requested for every place details call.
var DetailFields = []string{
	"place_id",
	"name",
	"vicinity",
	"formatted_phone_number",
	"website",
	"rating",
	"user_ratings_total",
	"geometry.location",
	"opening_hours",
}

// GooglePlacesProvider implements the PlacesProvider using the Google Places web service.
type GooglePlacesProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewGooglePlacesProvider creates a new Google Places provider.
func NewGooglePlacesProvider(apiKey string) providers.PlacesProvider {
	return NewGooglePlacesProviderWithOptions(apiKey, googlePlacesBaseURL, nil)
}

// NewGooglePlacesProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGooglePlacesProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) providers.PlacesProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googlePlacesBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GooglePlacesProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// NearbyDoctors runs a nearby search for doctors of the given specialization.
func (g *GooglePlacesProvider) NearbyDoctors(ctx context.Context, lat, lng float64, specialization string) ([]entities.PlaceCandidate, error) {
	ctx, span := observability.StartSpan(ctx, "places.nearby_search")
	defer span.End()

	params := url.Values{}
	params.Set("location", formatLatLng(lat, lng))
	params.Set("radius", strconv.Itoa(SearchRadiusMeters))
	params.Set("keyword", "doctor "+specialization)
	params.Set("type", doctorPlaceType)

	var payload googleNearbySearchResponse
	body, err := g.get(ctx, "nearby_search", "/nearbysearch/json", params, &payload)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.String("places.status", payload.Status),
		attribute.Int("places.result_count", len(payload.Results)),
	)

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []entities.PlaceCandidate{}, nil
	default:
		err := apperrors.NewUpstreamStatusError("Google Places API (Nearby Search) failed", rawDetails(body))
		observability.RecordError(span, err)
		return nil, err
	}

	candidates := make([]entities.PlaceCandidate, 0, len(payload.Results))
	for _, result := range payload.Results {
		candidates = append(candidates, entities.PlaceCandidate{
			PlaceID: result.PlaceID,
			Name:    result.Name,
		})
	}
	return candidates, nil
}

// PlaceDetails fetches the fixed detail field set for one place.
func (g *GooglePlacesProvider) PlaceDetails(ctx context.Context, placeID string) (*entities.PlaceDetails, error) {
	ctx, span := observability.StartSpan(ctx, "places.details")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("places.place_id", placeID))

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(DetailFields, ","))

	var payload googlePlaceDetailsResponse
	body, err := g.get(ctx, "details", "/details/json", params, &payload)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if payload.Status != "OK" || payload.Result == nil {
		err := apperrors.NewExternalError(
			"place details request failed",
			fmt.Errorf("place %s: status %q", placeID, payload.Status),
		).WithDetails(rawDetails(body))
		observability.RecordError(span, err)
		return nil, err
	}

	result := payload.Result
	details := &entities.PlaceDetails{
		PlaceID:          result.PlaceID,
		Name:             result.Name,
		Vicinity:         result.Vicinity,
		PhoneNumber:      result.FormattedPhoneNumber,
		Website:          result.Website,
		Rating:           result.Rating,
		UserRatingsTotal: result.UserRatingsTotal,
		OpeningHours:     result.OpeningHours,
	}
	if result.Geometry != nil && result.Geometry.Location != nil {
		details.Location = &entities.LatLng{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		}
	}
	return details, nil
}

// get performs a keyed GET against the Places API and decodes the JSON body into out.
// The raw body is returned so callers can echo it back on failure.
func (g *GooglePlacesProvider) get(ctx context.Context, operation, path string, params url.Values, out interface{}) ([]byte, error) {
	if g.apiKey == "" {
		return nil, apperrors.NewExternalError("google maps api key is required", nil)
	}

	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", g.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build places request", err)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		observability.RecordUpstreamCall(ctx, "places", operation, 0, time.Since(start), err)
		return nil, apperrors.NewExternalError("places request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordUpstreamCall(ctx, "places", operation, resp.StatusCode, time.Since(start), err)
		return nil, apperrors.NewExternalError("failed to read places response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("places request returned status %d", resp.StatusCode)
		observability.RecordUpstreamCall(ctx, "places", operation, resp.StatusCode, time.Since(start), statusErr)
		return body, apperrors.NewExternalError("places request failed", statusErr).WithDetails(rawDetails(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		observability.RecordUpstreamCall(ctx, "places", operation, resp.StatusCode, time.Since(start), err)
		return body, apperrors.NewExternalError("failed to decode places response", err)
	}

	observability.RecordUpstreamCall(ctx, "places", operation, resp.StatusCode, time.Since(start), nil)
	return body, nil
}

// rawDetails returns body as raw JSON when it is valid JSON, else as trimmed text.
func rawDetails(body []byte) interface{} {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	return string(trimmed)
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

type googleNearbySearchResponse struct {
	Status       string                     `json:"status"`
	ErrorMessage string                     `json:"error_message,omitempty"`
	Results      []googleNearbySearchResult `json:"results"`
}

type googleNearbySearchResult struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

type googlePlaceDetailsResponse struct {
	Status       string              `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Result       *googlePlaceDetails `json:"result"`
}

type googlePlaceDetails struct {
	PlaceID              string          `json:"place_id"`
	Name                 string          `json:"name"`
	Vicinity             string          `json:"vicinity"`
	FormattedPhoneNumber *string         `json:"formatted_phone_number"`
	Website              *string         `json:"website"`
	Rating               *float64        `json:"rating"`
	UserRatingsTotal     *int            `json:"user_ratings_total"`
	Geometry             *googleGeometry `json:"geometry"`
	OpeningHours         json.RawMessage `json:"opening_hours"`
}

type googleGeometry struct {
	Location *googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
