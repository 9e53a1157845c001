package routes_test

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbuddy/backend/internal/api/handlers"
	"github.com/healthbuddy/backend/internal/api/middleware"
	"github.com/healthbuddy/backend/internal/api/routes"
	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
)

type stubFinder struct{}

func (stubFinder) FindDoctors(ctx context.Context, req entities.LookupRequest) (*entities.LookupResponse, error) {
	return &entities.LookupResponse{Specialization: "ENT", Doctors: []entities.DoctorRecord{}}, nil
}

type stubPredictor struct{}

func (stubPredictor) Predict(ctx context.Context, problemText string, lat, lng *float64) (*entities.PredictionView, error) {
	return &entities.PredictionView{}, nil
}

func newHandler() http.Handler {
	finder := stubFinder{}
	router := routes.NewRouter(
		handlers.NewDoctorHandler(finder),
		handlers.NewPageHandler(stubPredictor{}, finder),
		"",
		nil,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	)
	return router.SetupRoutes()
}

func TestRouter_Health(t *testing.T) {
	rr := httptest.NewRecorder()
	newHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestRouter_FindDoctor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/find-doctor", strings.NewReader(`{"symptoms":"ear ache","lat":1,"lng":2}`))
	rr := httptest.NewRecorder()
	newHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"specialization":"ENT","doctors":[]}`, rr.Body.String())
}

func TestRouter_FindDoctorRejectsGet(t *testing.T) {
	rr := httptest.NewRecorder()
	newHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/find-doctor", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_IndexOnlyAtRoot(t *testing.T) {
	handler := newHandler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "HealthBuddy")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rr := httptest.NewRecorder()
	newHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# metrics", rr.Body.String())
}

func TestRouter_Metrics_GzipScrape(t *testing.T) {
	metricsHandler, shutdown, err := observability.SetupMetrics()
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	finder := stubFinder{}
	handler := routes.NewRouter(
		handlers.NewDoctorHandler(finder),
		handlers.NewPageHandler(stubPredictor{}, finder),
		"",
		metrics,
		metricsHandler,
	).SetupRoutes()

	// one request so the HTTP server counter has a sample
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)

	// a single decode yields the text exposition format
	require.NotEmpty(t, body)
	assert.NotEqual(t, []byte{0x1f, 0x8b}, body[:2])
	assert.Contains(t, string(body), "# HELP")
	assert.Regexp(t, `http[._]server[._]request[._]count`, string(body))
}
