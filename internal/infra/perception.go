package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

const (
	perceptionUserAgent = "focuscam"
	maxErrorBody        = 64 << 10
)

// HTTPPerception implements domain.PerceptionClient against an HTTP vision
// endpoint that accepts a JPEG body and answers with an AnalysisResult.
type HTTPPerception struct {
	client *http.Client
	url    string
	apiKey string
}

// NewHTTPPerception creates a perception client.
// The client has no timeout; deadlines come from the request context.
func NewHTTPPerception(url, apiKey string) *HTTPPerception {
	return &HTTPPerception{
		client: &http.Client{},
		url:    url,
		apiKey: apiKey,
	}
}

// wireResult is the response body. Score is a float because some models
// answer 72.5.
type wireResult struct {
	ConcentrationScore   float64  `json:"concentrationScore"`
	IsLookingAtScreen    bool     `json:"isLookingAtScreen"`
	Posture              string   `json:"posture"`
	HasElectronicDevice  bool     `json:"hasElectronicDevice"`
	DetectedDistractions []string `json:"detectedDistractions"`
	Feedback             string   `json:"feedback"`
}

// googleError is the error envelope used by Google style APIs.
type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// Analyze uploads one frame and parses the judgment.
func (p *HTTPPerception) Analyze(ctx context.Context, jpeg []byte) (domain.AnalysisResult, error) {
	if p.url == "" || p.apiKey == "" {
		return domain.AnalysisResult{}, fmt.Errorf("%w: endpoint and API key are required", domain.ErrMisconfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(jpeg))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrMisconfigured, err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("User-Agent", perceptionUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to call perception service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.AnalysisResult{}, classifyResponse(resp.StatusCode, body)
	}

	var wire wireResult
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to parse perception response: %w", err)
	}

	return domain.AnalysisResult{
		ConcentrationScore:   domain.ClampScore(int(math.Round(wire.ConcentrationScore))),
		IsLookingAtScreen:    wire.IsLookingAtScreen,
		Posture:              domain.ParsePosture(wire.Posture),
		HasElectronicDevice:  wire.HasElectronicDevice,
		DetectedDistractions: wire.DetectedDistractions,
		Feedback:             strings.TrimSpace(wire.Feedback),
	}, nil
}

// classifyResponse maps a non-200 answer onto the failure taxonomy.
func classifyResponse(status int, body []byte) error {
	var envelope googleError
	_ = json.Unmarshal(body, &envelope)
	apiStatus := envelope.Error.Status
	message := envelope.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	reasons := make([]string, 0, len(envelope.Error.Details))
	for _, d := range envelope.Error.Details {
		reasons = append(reasons, d.Reason)
	}
	keyInvalid := strings.Contains(string(body), "API_KEY_INVALID")

	var sentinel error
	switch {
	case status == http.StatusTooManyRequests || apiStatus == "RESOURCE_EXHAUSTED":
		sentinel = domain.ErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		apiStatus == "PERMISSION_DENIED" || apiStatus == "UNAUTHENTICATED" || keyInvalid:
		sentinel = domain.ErrUnauthorized
	case status == http.StatusNotFound || status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout ||
		apiStatus == "UNAVAILABLE" || apiStatus == "NOT_FOUND":
		sentinel = domain.ErrServiceUnavailable
	default:
		return fmt.Errorf("perception service returned status %d: %s", status, message)
	}

	if len(reasons) > 0 {
		return fmt.Errorf("%w: status %d %s (%s): %s", sentinel, status, apiStatus, strings.Join(reasons, ","), message)
	}
	return fmt.Errorf("%w: status %d: %s", sentinel, status, message)
}

var _ domain.PerceptionClient = (*HTTPPerception)(nil)
