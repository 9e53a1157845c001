package gradio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/healthbuddy/backend/internal/domain/entities"
	"github.com/healthbuddy/backend/internal/domain/providers"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	"github.com/healthbuddy/backend/pkg/config"
	apperrors "github.com/healthbuddy/backend/pkg/errors"
)

const (
	defaultEndpoint   = "predict_disease_interface"
	defaultTimeout    = 60 * time.Second
	callPathPrefix    = "/gradio_api/call/"
	maxEventLineBytes = 1 << 20
)

// Ensure Client implements providers.DiseasePredictor at compile time.
var _ providers.DiseasePredictor = (*Client)(nil)

// Client calls a Gradio app's named endpoint over the queue-based REST API.
type Client struct {
	baseURL    string
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Gradio client.
func NewClient(cfg *config.GradioConfig) *Client {
	return NewClientWithOptions(cfg, nil)
}

// NewClientWithOptions allows overriding the HTTP client (used for tests).
func NewClientWithOptions(cfg *config.GradioConfig, httpClient *http.Client) *Client {
	c := &Client{endpoint: defaultEndpoint}
	timeout := defaultTimeout
	if cfg != nil {
		c.baseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
		c.token = cfg.Token
		if ep := strings.Trim(strings.TrimSpace(cfg.Endpoint), "/"); ep != "" {
			c.endpoint = ep
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	c.httpClient = httpClient
	return c
}

type callRequest struct {
	Data []interface{} `json:"data"`
}

type callResponse struct {
	EventID string `json:"event_id"`
}

// Predict submits the problem description and coordinates and waits for the complete event.
func (c *Client) Predict(ctx context.Context, req entities.PredictionRequest) (*entities.PredictionResult, error) {
	ctx, span := observability.StartSpan(ctx, "gradio.predict")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("gradio.endpoint", c.endpoint))

	if c.baseURL == "" {
		err := apperrors.NewExternalError("gradio base url is not configured", nil)
		observability.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	eventID, err := c.submit(ctx, req)
	if err != nil {
		observability.RecordUpstreamCall(ctx, "gradio", "submit", 0, time.Since(start), err)
		observability.RecordError(span, err)
		return nil, err
	}
	observability.SetSpanAttributes(span, attribute.String("gradio.event_id", eventID))

	outputs, err := c.await(ctx, eventID)
	observability.RecordUpstreamCall(ctx, "gradio", "predict", 0, time.Since(start), err)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return &entities.PredictionResult{Segments: outputs}, nil
}

func (c *Client) submit(ctx context.Context, req entities.PredictionRequest) (string, error) {
	body, err := json.Marshal(callRequest{
		Data: []interface{}{req.ProblemText, req.Latitude, req.Longitude},
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode gradio request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.callURL(), bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build gradio request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.NewExternalError("gradio request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := apperrors.NewExternalError("gradio request failed", fmt.Errorf("status %d", resp.StatusCode))
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if text := strings.TrimSpace(string(payload)); text != "" {
			appErr.WithDetails(text)
		}
		return "", appErr
	}

	var call callResponse
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return "", apperrors.NewExternalError("failed to decode gradio response", err)
	}
	if call.EventID == "" {
		return "", apperrors.NewExternalError("gradio response missing event id", nil)
	}
	return call.EventID, nil
}

// await reads the event stream for eventID until a complete or error event arrives.
func (c *Client) await(ctx context.Context, eventID string) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.callURL()+"/"+url.PathEscape(eventID), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build gradio result request", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewExternalError("gradio result request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError("gradio result request failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventLineBytes)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				return decodeOutputs(data)
			case "error":
				return nil, apperrors.NewExternalError("gradio prediction failed", nil).WithDetails(data)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read gradio event stream", err)
	}
	return nil, apperrors.NewExternalError("gradio event stream ended without a result", nil)
}

func (c *Client) callURL() string {
	return c.baseURL + callPathPrefix + c.endpoint
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// decodeOutputs turns the complete event payload into text segments.
// Non-string outputs are kept as their raw JSON text.
func decodeOutputs(data string) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, apperrors.NewExternalError("failed to decode gradio outputs", err)
	}

	segments := make([]string, 0, len(raw))
	for _, item := range raw {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			segments = append(segments, text)
			continue
		}
		segments = append(segments, string(item))
	}
	return segments, nil
}
