package providers

import "context"

// SpecializationClassifier maps a symptom description to a medical specialization.
// The returned text is the model's trimmed output, not checked against any vocabulary.
type SpecializationClassifier interface {
	Classify(ctx context.Context, symptoms string) (string, error)
}
