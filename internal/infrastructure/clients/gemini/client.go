package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"github.com/healthbuddy/backend/internal/domain/providers"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	"github.com/healthbuddy/backend/pkg/config"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 20 * time.Second

	classificationInstruction = "Which type of doctor should a patient visit for the following symptoms? " +
		"Respond with only one specialization (like physician, ENT, neurologist, cardiologist, orthopedic, gynecologist, dermatologist)."
)

// Ensure Classifier implements providers.SpecializationClassifier at compile time.
var _ providers.SpecializationClassifier = (*Classifier)(nil)

// Generator is the subset of genai.Models used by the classifier.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Classifier asks Gemini which specialization fits a symptom description.
type Classifier struct {
	generator Generator
	model     string
	timeout   time.Duration
}

// NewClient creates a Gemini API client from configuration.
func NewClient(ctx context.Context, cfg *config.GeminiConfig) (*genai.Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewClassifier creates a classifier backed by client.Models.
func NewClassifier(client *genai.Client, model string, timeout time.Duration) *Classifier {
	var generator Generator
	if client != nil {
		generator = client.Models
	}
	return NewClassifierWithGenerator(generator, model, timeout)
}

// NewClassifierWithGenerator allows substituting the generator (used for tests).
func NewClassifierWithGenerator(generator Generator, model string, timeout time.Duration) *Classifier {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Classifier{generator: generator, model: model, timeout: timeout}
}

// Classify issues exactly one generation request and returns the trimmed response text.
func (c *Classifier) Classify(ctx context.Context, symptoms string) (string, error) {
	if c.generator == nil {
		// No API key configured
		return "", apperrors.NewExternalError("gemini api key is required", nil)
	}

	ctx, span := observability.StartSpan(ctx, "gemini.classify")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("ai.model", c.model))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result, err := c.generator.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildPrompt(symptoms)}},
		}},
		nil,
	)
	observability.RecordUpstreamCall(ctx, "gemini", "generate_content", 0, time.Since(start), err)
	if err != nil {
		observability.RecordError(span, err)
		return "", apperrors.NewExternalError("specialization classification failed", err)
	}
	if result == nil {
		err := apperrors.NewExternalError("gemini returned nil result", nil)
		observability.RecordError(span, err)
		return "", err
	}

	specialization := strings.TrimSpace(result.Text())
	observability.SetSpanAttributes(span, attribute.String("specialization", specialization))
	return specialization, nil
}

// BuildPrompt concatenates the fixed instruction with the user's symptom text.
func BuildPrompt(symptoms string) string {
	return classificationInstruction + "\nSymptoms: " + symptoms
}
