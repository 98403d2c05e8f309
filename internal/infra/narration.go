package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

const maxAudioBytes = 16 << 20

// HTTPNarration implements domain.NarrationClient against a narration
// service exposing /speech (text to audio) and /summary (history to text).
type HTTPNarration struct {
	client  *http.Client
	baseURL string
	apiKey  string
	player  AudioPlayer
}

// NewHTTPNarration creates a narration client.
func NewHTTPNarration(baseURL, apiKey string, player AudioPlayer) *HTTPNarration {
	return &HTTPNarration{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		player:  player,
	}
}

type speechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type summaryRequest struct {
	Samples []domain.AnalysisResult `json:"samples"`
}

type summaryResponse struct {
	Comment string `json:"comment"`
}

// Speak synthesizes text in the voice style and plays it.
func (n *HTTPNarration) Speak(ctx context.Context, text, voiceID string) error {
	resp, err := n.post(ctx, "/speech", speechRequest{Text: text, Voice: voiceID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read audio: %v", domain.ErrNarration, err)
	}
	if n.player == nil {
		return fmt.Errorf("%w: no audio player configured", domain.ErrNarration)
	}
	if err := n.player.Play(ctx, audio); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNarration, err)
	}
	return nil
}

// Summarize asks the service for a short comment on the session.
func (n *HTTPNarration) Summarize(ctx context.Context, history []domain.AnalysisResult) (string, error) {
	resp, err := n.post(ctx, "/summary", summaryRequest{Samples: history})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: failed to parse summary: %v", domain.ErrNarration, err)
	}
	comment := strings.TrimSpace(out.Comment)
	if comment == "" {
		return "", fmt.Errorf("%w: empty summary", domain.ErrNarration)
	}
	return comment, nil
}

// post sends a JSON body and returns a 200 response; the caller closes it.
func (n *HTTPNarration) post(ctx context.Context, path string, body any) (*http.Response, error) {
	if n.baseURL == "" {
		return nil, fmt.Errorf("%w: narration endpoint not configured", domain.ErrNarration)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNarration, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNarration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", perceptionUserAgent)
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNarration, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrNarration, path, resp.StatusCode)
	}
	return resp, nil
}

var _ domain.NarrationClient = (*HTTPNarration)(nil)
