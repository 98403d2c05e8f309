package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

func TestSession_TokenLifecycle(t *testing.T) {
	s := NewSession()

	first, ok := s.Begin(context.Background())
	require.True(t, ok)
	assert.True(t, s.IsCurrent(first))

	_, ok = s.Begin(context.Background())
	assert.False(t, ok, "already active")

	assert.True(t, s.End())
	assert.False(t, s.IsCurrent(first))
	assert.Error(t, first.Context().Err(), "context cancelled on end")
	assert.False(t, s.End())

	second, ok := s.Begin(context.Background())
	require.True(t, ok)
	assert.Greater(t, second.Generation(), first.Generation())
	assert.False(t, s.IsCurrent(first), "old token stays stale")
}

func TestSession_StaleTokenCannotWrite(t *testing.T) {
	s := NewSession()
	stale, _ := s.Begin(context.Background())
	s.End()
	current, _ := s.Begin(context.Background())

	assert.False(t, s.Record(stale, domain.AnalysisResult{ConcentrationScore: 1}))
	assert.False(t, s.SetError(stale, "late"))
	assert.False(t, s.Fail(stale, "late"))

	assert.True(t, s.IsCurrent(current))
	snap := s.Snapshot()
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.LastError)
}

func TestSession_TakeHistoryOnce(t *testing.T) {
	s := NewSession()
	_, ok := s.TakeHistory()
	assert.False(t, ok, "nothing ran yet")

	token, _ := s.Begin(context.Background())
	s.Record(token, domain.AnalysisResult{ConcentrationScore: 70})
	_, ok = s.TakeHistory()
	assert.False(t, ok, "still active")

	s.End()
	history, ok := s.TakeHistory()
	require.True(t, ok)
	assert.Len(t, history, 1)

	_, ok = s.TakeHistory()
	assert.False(t, ok)
	assert.Len(t, s.Snapshot().History, 1, "history stays visible")
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	s := NewSession()
	token, _ := s.Begin(context.Background())
	s.Record(token, domain.AnalysisResult{ConcentrationScore: 70})

	snap := s.Snapshot()
	snap.History[0].ConcentrationScore = 0
	snap.Latest.ConcentrationScore = 0

	again := s.Snapshot()
	assert.Equal(t, 70, again.History[0].ConcentrationScore)
	assert.Equal(t, 70, again.Latest.ConcentrationScore)
}
