package entities

import "github.com/healthbuddy/backend/pkg/prose"

// PredictionRequest is the input of the hosted disease prediction interface
type PredictionRequest struct {
	ProblemText string  `json:"problem_text"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// PredictionResult holds the ordered text segments returned by the prediction interface.
type PredictionResult struct {
	Segments []string `json:"segments"`
}

const (
	// ConditionSegment is the index of the condition summary
	ConditionSegment = 2
	// SpecialistSegment is the index of the specialist and doctor listing prose
	SpecialistSegment = 3
)

// Segment returns the segment at index i, or "" when the result is shorter.
func (p *PredictionResult) Segment(i int) string {
	if p == nil || i < 0 || i >= len(p.Segments) {
		return ""
	}
	return p.Segments[i]
}

// PredictionView is what the UI renders for a prediction
type PredictionView struct {
	Segments   []string       `json:"segments"`
	Condition  string         `json:"condition,omitempty"`
	Specialist string         `json:"specialist,omitempty"`
	Doctors    []prose.Doctor `json:"doctors"`
	Message    string         `json:"message,omitempty"`
}
