package usecase

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/catalog"
	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// Logical SessionStore keys.
const (
	KeyRecentSessions = "recent_sessions"
	KeyTotalCoins     = "total_coins"
	KeyUnlockedItems  = "unlocked_item_ids"
	KeyActiveTheme    = "active_theme_id"
	KeyActiveVoice    = "active_voice_id"
)

// MaxStoredSessions caps the persisted session log.
const MaxStoredSessions = 50

// Ledger owns the persisted shapes: session log, wallet, unlocks, preferences.
// State is read from the store once and rewritten on every economic event.
type Ledger struct {
	mu       sync.Mutex
	store    domain.SessionStore
	catalog  *catalog.Registry
	logger   *zap.Logger
	profile  domain.Profile
	sessions []domain.StoredSession
}

// NewLedger creates a ledger and loads its state from the store.
// Malformed entries are discarded; only store read failures are returned.
func NewLedger(store domain.SessionStore, registry *catalog.Registry, logger *zap.Logger) (*Ledger, error) {
	l := &Ledger{
		store:   store,
		catalog: registry,
		logger:  logger,
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads every key from the store.
func (l *Ledger) Reload() error {
	raw := make(map[string][]byte)
	for _, key := range []string{KeyRecentSessions, KeyTotalCoins, KeyUnlockedItems, KeyActiveTheme, KeyActiveVoice} {
		value, ok, err := l.store.Get(key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if ok {
			raw[key] = value
		}
	}

	profile := domain.Profile{
		TotalCoins:      l.decodeCoins(raw[KeyTotalCoins]),
		UnlockedItemIDs: l.decodeUnlocked(raw[KeyUnlockedItems]),
	}
	profile.ActiveThemeID = l.decodeActive(raw[KeyActiveTheme], KeyActiveTheme, catalog.KindTheme, catalog.DefaultThemeID, profile)
	profile.ActiveVoiceID = l.decodeActive(raw[KeyActiveVoice], KeyActiveVoice, catalog.KindVoice, catalog.DefaultVoiceID, profile)
	sessions := l.decodeSessions(raw[KeyRecentSessions])

	l.mu.Lock()
	l.profile = profile
	l.sessions = sessions
	l.mu.Unlock()
	return nil
}

// Profile returns a copy of the economy state.
func (l *Ledger) Profile() domain.Profile {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.profile
	p.UnlockedItemIDs = append([]string(nil), l.profile.UnlockedItemIDs...)
	return p
}

// ActiveVoiceID returns the selected narration style.
func (l *Ledger) ActiveVoiceID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile.ActiveVoiceID
}

// RecentSessions returns the stored log, newest first.
func (l *Ledger) RecentSessions() []domain.StoredSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.StoredSession(nil), l.sessions...)
}

// RecordSession credits the earned coins and prepends the session to the log.
// Both values are written in one batch.
func (l *Ledger) RecordSession(session domain.StoredSession) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sessions := append([]domain.StoredSession{session}, l.sessions...)
	if len(sessions) > MaxStoredSessions {
		sessions = sessions[:MaxStoredSessions]
	}
	coins := l.profile.TotalCoins + session.EarnedCoins

	entries, err := encodeEntries(map[string]any{
		KeyRecentSessions: sessions,
		KeyTotalCoins:     coins,
	})
	if err != nil {
		return err
	}
	if err := l.store.SetMany(entries); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	l.sessions = sessions
	l.profile.TotalCoins = coins
	l.logger.Info("session recorded",
		zap.String("session_id", session.ID),
		zap.Int("earned_coins", session.EarnedCoins),
		zap.Int("total_coins", coins))
	return nil
}

// Purchase unlocks a catalog item. A purchase that would overdraw the
// wallet is rejected and leaves the state unchanged.
func (l *Ledger) Purchase(itemID string) error {
	item, err := l.catalog.Lookup(itemID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.profile.IsUnlocked(itemID) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyUnlocked, itemID)
	}
	if item.Price() > l.profile.TotalCoins {
		return fmt.Errorf("%w: %s costs %d, balance %d",
			domain.ErrInsufficientCoins, itemID, item.Price(), l.profile.TotalCoins)
	}

	coins := l.profile.TotalCoins - item.Price()
	unlocked := append(append([]string(nil), l.profile.UnlockedItemIDs...), itemID)

	entries, err := encodeEntries(map[string]any{
		KeyTotalCoins:    coins,
		KeyUnlockedItems: unlocked,
	})
	if err != nil {
		return err
	}
	if err := l.store.SetMany(entries); err != nil {
		return fmt.Errorf("failed to persist purchase: %w", err)
	}

	l.profile.TotalCoins = coins
	l.profile.UnlockedItemIDs = unlocked
	l.logger.Info("item purchased",
		zap.String("item", itemID),
		zap.Int("price", item.Price()),
		zap.Int("total_coins", coins))
	return nil
}

// SetActiveTheme selects an unlocked theme.
func (l *Ledger) SetActiveTheme(id string) error {
	return l.setActive(id, catalog.KindTheme, KeyActiveTheme, func(p *domain.Profile) { p.ActiveThemeID = id })
}

// SetActiveVoice selects an unlocked voice style.
func (l *Ledger) SetActiveVoice(id string) error {
	return l.setActive(id, catalog.KindVoice, KeyActiveVoice, func(p *domain.Profile) { p.ActiveVoiceID = id })
}

func (l *Ledger) setActive(id string, kind catalog.Kind, key string, apply func(*domain.Profile)) error {
	if !l.catalog.IsKind(id, kind) {
		return fmt.Errorf("%w: no %s named %q", domain.ErrUnknownItem, kind, id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.profile.IsUnlocked(id) {
		return fmt.Errorf("%w: %s", domain.ErrItemLocked, id)
	}
	value, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := l.store.Set(key, value); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	apply(&l.profile)
	return nil
}

// ClearHistory drops the session log. Coins and unlocks are kept.
func (l *Ledger) ClearHistory() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Remove(KeyRecentSessions); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	l.sessions = nil
	return nil
}

func encodeEntries(values map[string]any) (map[string][]byte, error) {
	entries := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		entries[key] = data
	}
	return entries, nil
}

func (l *Ledger) discard(key string, reason string) {
	l.logger.Warn("discarding malformed stored value",
		zap.String("key", key),
		zap.String("reason", reason))
}

func (l *Ledger) decodeCoins(data []byte) int {
	if data == nil {
		return 0
	}
	var coins int
	if err := json.Unmarshal(data, &coins); err != nil {
		l.discard(KeyTotalCoins, err.Error())
		return 0
	}
	if coins < 0 {
		l.discard(KeyTotalCoins, "negative balance")
		return 0
	}
	return coins
}

func (l *Ledger) decodeUnlocked(data []byte) []string {
	unlocked := l.catalog.FreeIDs()
	if data == nil {
		return unlocked
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		l.discard(KeyUnlockedItems, err.Error())
		return unlocked
	}

	seen := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		seen[id] = true
	}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, ok := l.catalog.Get(id); !ok {
			l.discard(KeyUnlockedItems, "unknown item "+id)
			continue
		}
		seen[id] = true
		unlocked = append(unlocked, id)
	}
	return unlocked
}

// decodeActive falls back to the default silently when the stored id is
// unknown, of the wrong kind or not unlocked.
func (l *Ledger) decodeActive(data []byte, key string, kind catalog.Kind, fallback string, profile domain.Profile) string {
	if data == nil {
		return fallback
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		l.discard(key, err.Error())
		return fallback
	}
	if !l.catalog.IsKind(id, kind) || !profile.IsUnlocked(id) {
		l.logger.Debug("stored preference not available, using default",
			zap.String("key", key),
			zap.String("id", id))
		return fallback
	}
	return id
}

func (l *Ledger) decodeSessions(data []byte) []domain.StoredSession {
	if data == nil {
		return nil
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(data, &rawEntries); err != nil {
		l.discard(KeyRecentSessions, err.Error())
		return nil
	}

	sessions := make([]domain.StoredSession, 0, len(rawEntries))
	for _, raw := range rawEntries {
		var s domain.StoredSession
		if err := json.Unmarshal(raw, &s); err != nil {
			l.discard(KeyRecentSessions, err.Error())
			continue
		}
		if reason := validateStoredSession(&s); reason != "" {
			l.discard(KeyRecentSessions, reason)
			continue
		}
		sessions = append(sessions, s)
		if len(sessions) == MaxStoredSessions {
			break
		}
	}
	return sessions
}

// validateStoredSession checks shape and fills absent posture buckets.
func validateStoredSession(s *domain.StoredSession) string {
	switch {
	case s.ID == "":
		return "session without id"
	case s.CreatedAt.IsZero():
		return "session without timestamp"
	case s.EarnedCoins < 0:
		return "negative earned coins"
	case s.AverageScore < 0 || s.AverageScore > 100:
		return "average score out of range"
	case s.TotalDurationSeconds < 0 || s.DistractionCount < 0:
		return "negative counters"
	}

	stats := make(map[domain.Posture]int, len(domain.AllPostures))
	for _, p := range domain.AllPostures {
		stats[p] = 0
	}
	for posture, count := range s.PostureStats {
		if domain.ParsePosture(string(posture)) != posture || count < 0 {
			return "invalid posture stats"
		}
		stats[posture] = count
	}
	s.PostureStats = stats
	return ""
}
