package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/healthbuddy/backend/internal/domain/entities"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

// Finder runs a doctor lookup.
type Finder interface {
	FindDoctors(ctx context.Context, req entities.LookupRequest) (*entities.LookupResponse, error)
}

// Predictor runs the hosted disease prediction.
type Predictor interface {
	Predict(ctx context.Context, problemText string, lat, lng *float64) (*entities.PredictionView, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Finder    Finder
	Predictor Predictor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Find    FindCmd    `cmd:"" help:"Classify symptoms and list nearby doctors of that specialization"`
	Predict PredictCmd `cmd:"" help:"Run the hosted disease prediction and list the doctors it suggests"`
}

// FindCmd is the "find" subcommand.
type FindCmd struct {
	Symptoms string  `short:"s" required:"" help:"Free-text symptom description"`
	Lat      float64 `required:"" help:"Latitude of the user"`
	Lng      float64 `required:"" help:"Longitude of the user"`
}

// PredictCmd is the "predict" subcommand.
type PredictCmd struct {
	Symptoms string  `short:"s" required:"" help:"Free-text symptom description"`
	Lat      float64 `required:"" help:"Latitude of the user"`
	Lng      float64 `required:"" help:"Longitude of the user"`
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportedError marks an error whose message and details were already written to stderr.
type reportedError struct {
	error
}

func (e *reportedError) Unwrap() error {
	return e.error
}

// reportError writes err and its upstream payload to w and returns err marked as reported.
func reportError(w io.Writer, err error) error {
	fmt.Fprintf(w, "error: %v\n", err)
	switch details := apperrors.DetailsOf(err).(type) {
	case nil:
	case json.RawMessage:
		fmt.Fprintf(w, "details: %s\n", details)
	case string:
		// plain-text payloads that are only the root cause are already part of the message
		if !strings.Contains(err.Error(), details) {
			fmt.Fprintf(w, "details: %s\n", details)
		}
	default:
		if raw, mErr := json.Marshal(details); mErr == nil {
			fmt.Fprintf(w, "details: %s\n", raw)
		}
	}
	return &reportedError{error: err}
}

// Reported reports whether err was already written to stderr by a command.
func Reported(err error) bool {
	var reported *reportedError
	return errors.As(err, &reported)
}
