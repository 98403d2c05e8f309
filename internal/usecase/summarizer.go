package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// SummaryApology replaces the narration comment when summarization fails.
const SummaryApology = "Sorry, I couldn't put together a comment on this session, but your stats are saved."

// SessionRecorder persists a closed session together with its reward.
type SessionRecorder interface {
	RecordSession(session domain.StoredSession) error
}

// Summarize aggregates a history. Pure; the AI comment is left empty.
func Summarize(history []domain.AnalysisResult, interval time.Duration) domain.SessionSummary {
	stats := make(map[domain.Posture]int, len(domain.AllPostures))
	for _, p := range domain.AllPostures {
		stats[p] = 0
	}

	summary := domain.SessionSummary{PostureStats: stats}
	if len(history) == 0 {
		return summary
	}

	total := 0
	for _, r := range history {
		total += r.ConcentrationScore
		if r.IsDistracted() {
			summary.DistractionCount++
		}
		stats[domain.ParsePosture(string(r.Posture))]++
	}

	summary.AverageScore = int(math.Round(float64(total) / float64(len(history))))
	summary.TotalDurationSeconds = int(math.Round(float64(len(history)) * interval.Seconds()))
	return summary
}

// Reward returns the coins earned by a summary.
func Reward(summary domain.SessionSummary) int {
	minutes := math.Max(1, math.Round(float64(summary.TotalDurationSeconds)/60))
	coins := math.Round(float64(summary.AverageScore) / 10 * minutes)
	if coins < 0 {
		return 0
	}
	return int(coins)
}

// SessionSummarizer turns a finished history into a stored report.
type SessionSummarizer struct {
	narrator domain.NarrationClient
	recorder SessionRecorder
	clock    domain.Clock
	logger   *zap.Logger
}

// NewSessionSummarizer creates a summarizer.
func NewSessionSummarizer(narrator domain.NarrationClient, recorder SessionRecorder, clock domain.Clock, logger *zap.Logger) *SessionSummarizer {
	return &SessionSummarizer{
		narrator: narrator,
		recorder: recorder,
		clock:    clock,
		logger:   logger,
	}
}

// CloseSession summarizes, rewards and persists a session.
// An empty history returns ErrNothingToSummarize and writes nothing.
func (s *SessionSummarizer) CloseSession(ctx context.Context, history []domain.AnalysisResult, interval time.Duration) (*domain.StoredSession, error) {
	if len(history) == 0 {
		return nil, domain.ErrNothingToSummarize
	}

	ctx, span := otel.Tracer("focuscam/usecase").Start(ctx, "session.close")
	defer span.End()

	summary := Summarize(history, interval)
	summary.AIComment = s.comment(ctx, history)

	stored := domain.StoredSession{
		ID:             ulid.Make().String(),
		CreatedAt:      s.clock.Now(),
		EarnedCoins:    Reward(summary),
		SessionSummary: summary,
	}
	span.SetAttributes(
		attribute.Int("session.samples", len(history)),
		attribute.Int("session.average_score", summary.AverageScore),
		attribute.Int("session.earned_coins", stored.EarnedCoins),
	)

	if err := s.recorder.RecordSession(stored); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	s.logger.Info("session closed",
		zap.String("session_id", stored.ID),
		zap.Int("samples", len(history)),
		zap.Int("average_score", summary.AverageScore),
		zap.Int("earned_coins", stored.EarnedCoins))
	return &stored, nil
}

func (s *SessionSummarizer) comment(ctx context.Context, history []domain.AnalysisResult) string {
	if s.narrator == nil {
		return SummaryApology
	}
	text, err := s.narrator.Summarize(ctx, history)
	if err != nil || text == "" {
		s.logger.Warn("session summary unavailable", zap.Error(err))
		return SummaryApology
	}
	return text
}
