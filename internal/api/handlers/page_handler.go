package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
	"github.com/healthbuddy/backend/pkg/prose"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"tel": func(phone string) template.URL {
		return template.URL(prose.TelHref(phone))
	},
	"str": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).ParseFS(templateFS, "templates/index.html"))

// Predictor runs the hosted disease prediction
type Predictor interface {
	Predict(ctx context.Context, problemText string, lat, lng *float64) (*entities.PredictionView, error)
}

// PageHandler serves the HealthBuddy web page and its form posts.
type PageHandler struct {
	predictor Predictor
	finder    DoctorFinder
}

// NewPageHandler creates a new page handler
func NewPageHandler(predictor Predictor, finder DoctorFinder) *PageHandler {
	return &PageHandler{predictor: predictor, finder: finder}
}

type pageData struct {
	Symptoms   string
	Lat        string
	Lng        string
	Alert      string
	Prediction *entities.PredictionView
	Lookup     *entities.LookupResponse
	Failure    *failedLookup
}

type failedLookup struct {
	Status int
	Body   string
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageData{})
}

// Predict handles POST /predict
func (h *PageHandler) Predict(w http.ResponseWriter, r *http.Request) {
	data, lat, lng := readForm(r)

	view, err := h.predictor.Predict(r.Context(), data.Symptoms, lat, lng)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeValidation {
			data.Alert = appErr.Message
			h.render(w, r, http.StatusBadRequest, data)
			return
		}
		data.Alert = err.Error()
		h.render(w, r, http.StatusInternalServerError, data)
		return
	}

	data.Prediction = view
	h.render(w, r, http.StatusOK, data)
}

// Find handles POST /find
func (h *PageHandler) Find(w http.ResponseWriter, r *http.Request) {
	data, lat, lng := readForm(r)

	resp, err := h.finder.FindDoctors(r.Context(), entities.LookupRequest{
		Symptoms: &data.Symptoms,
		Lat:      lat,
		Lng:      lng,
	})
	if err != nil {
		status, body := lookupFailure(r.Context(), err)
		encoded, _ := json.Marshal(body)
		data.Failure = &failedLookup{Status: status, Body: string(encoded)}
		h.render(w, r, status, data)
		return
	}

	data.Lookup = resp
	h.render(w, r, http.StatusOK, data)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Failed to render page")
	}
}

// readForm returns the submitted form with lat and lng parsed. Unparseable
// coordinates are treated as absent. Input is trimmed the way the browser
// guards the symptom box, so whitespace-only symptoms arrive empty and are
// rejected; the JSON endpoint passes symptoms through untrimmed.
func readForm(r *http.Request) (pageData, *float64, *float64) {
	_ = r.ParseForm()
	data := pageData{
		Symptoms: strings.TrimSpace(r.PostFormValue("symptoms")),
		Lat:      strings.TrimSpace(r.PostFormValue("lat")),
		Lng:      strings.TrimSpace(r.PostFormValue("lng")),
	}
	return data, parseCoordinate(data.Lat), parseCoordinate(data.Lng)
}

func parseCoordinate(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}
