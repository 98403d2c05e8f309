package infra

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// mockPlayer implements AudioPlayer for testing
type mockPlayer struct {
	err    error
	played [][]byte
}

func (m *mockPlayer) Play(ctx context.Context, audio []byte) error {
	m.played = append(m.played, audio)
	return m.err
}

func TestHTTPNarration_Speak(t *testing.T) {
	var got speechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech", r.URL.Path)
		assert.Equal(t, "Bearer tts-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	player := &mockPlayer{}
	n := NewHTTPNarration(server.URL+"/", "tts-key", player)

	require.NoError(t, n.Speak(context.Background(), "Back to work.", "sergeant"))

	assert.Equal(t, speechRequest{Text: "Back to work.", Voice: "sergeant"}, got)
	assert.Equal(t, [][]byte{[]byte("mp3-bytes")}, player.played)
}

func TestHTTPNarration_Speak_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		player  *mockPlayer
		baseURL string
	}{
		{"service error", http.StatusInternalServerError, &mockPlayer{}, ""},
		{"player fails", http.StatusOK, &mockPlayer{err: errors.New("no device")}, ""},
		{"not configured", http.StatusOK, &mockPlayer{}, "unset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("audio"))
			}))
			defer server.Close()

			baseURL := server.URL
			if tt.baseURL == "unset" {
				baseURL = ""
			}
			err := NewHTTPNarration(baseURL, "", tt.player).Speak(context.Background(), "hi", "gentle")

			assert.ErrorIs(t, err, domain.ErrNarration)
		})
	}
}

func TestHTTPNarration_Summarize(t *testing.T) {
	var got summaryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"comment":" Focused start, phone crept in later. "}`))
	}))
	defer server.Close()

	history := []domain.AnalysisResult{
		{ConcentrationScore: 80, Posture: domain.PostureGood},
		{ConcentrationScore: 30, Posture: domain.PostureSlouching, HasElectronicDevice: true},
	}
	comment, err := NewHTTPNarration(server.URL, "", nil).Summarize(context.Background(), history)

	require.NoError(t, err)
	assert.Equal(t, "Focused start, phone crept in later.", comment)
	require.Len(t, got.Samples, 2)
	assert.Equal(t, domain.PostureSlouching, got.Samples[1].Posture)
}

func TestHTTPNarration_Summarize_EmptyComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"comment":""}`))
	}))
	defer server.Close()

	_, err := NewHTTPNarration(server.URL, "", nil).Summarize(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNarration)
}
