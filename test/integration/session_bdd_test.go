//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/catalog"
	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
	"github.com/eliteGoblin/focusd/focuscam/internal/infra"
	"github.com/eliteGoblin/focusd/focuscam/internal/monitor"
	"github.com/eliteGoblin/focusd/focuscam/internal/usecase"
	"github.com/eliteGoblin/focusd/focuscam/test/fixtures"
)

const (
	goodBody = `{"concentrationScore":90,"isLookingAtScreen":true,"posture":"GOOD","hasElectronicDevice":false,"detectedDistractions":[],"feedback":"Nice focus."}`
	badBody  = `{"concentrationScore":20,"isLookingAtScreen":false,"posture":"SLOUCHING","hasElectronicDevice":true,"detectedDistractions":["phone"],"feedback":""}`
)

var _ = Describe("Monitoring session", func() {
	var (
		dataDir  string
		clock    *fixtures.FakeClock
		narrator *fixtures.RecordingNarrator
		store    *infra.EncryptedStore
		ledger   *usecase.Ledger
		registry *catalog.Registry
		server   *httptest.Server
		calls    atomic.Int32
		respond  func(n int32, w http.ResponseWriter)
		m        *monitor.Monitor
	)

	openLedger := func() {
		var err error
		store, err = infra.OpenStore(dataDir)
		Expect(err).NotTo(HaveOccurred())
		ledger, err = usecase.NewLedger(store, registry, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	}

	newMonitor := func() *monitor.Monitor {
		return monitor.New(monitor.DefaultConfig(), monitor.Deps{
			Frames:     &fixtures.StaticFrames{},
			Encoder:    infra.NewJPEGEncoder(0, 0),
			Perception: infra.NewHTTPPerception(server.URL, "test-key"),
			Speaker:    usecase.NewSyncAnnouncer(narrator, nil, zap.NewNop()),
			Voices:     ledger,
			Summarizer: usecase.NewSessionSummarizer(narrator, ledger, clock, zap.NewNop()),
			Registry:   registry,
			Clock:      clock,
		}, zap.NewNop())
	}

	// runFor starts the session and lets n capture ticks happen.
	runFor := func(n int) {
		Expect(m.Start(context.Background())).To(BeTrue())
		clock.Advance(0)
		for i := 1; i < n; i++ {
			clock.Advance(monitor.DefaultCaptureInterval)
		}
	}

	BeforeEach(func() {
		var err error
		dataDir, err = os.MkdirTemp("", "focuscam-integration-*")
		Expect(err).NotTo(HaveOccurred())

		clock = fixtures.NewFakeClock(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
		narrator = &fixtures.RecordingNarrator{Summary: "Steady work."}
		registry = catalog.NewRegistry()
		calls.Store(0)
		respond = func(n int32, w http.ResponseWriter) { _, _ = w.Write([]byte(goodBody)) }

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			respond(n, w)
		}))

		openLedger()
		m = newMonitor()
	})

	AfterEach(func() {
		m.Close()
		server.Close()
		_ = store.Close()
		os.RemoveAll(dataDir)
	})

	Describe("a focused session", func() {
		It("should save the report and pay coins that survive a restart", func() {
			runFor(12)
			Expect(calls.Load()).To(Equal(int32(12)))

			report, err := m.Stop(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.AverageScore).To(Equal(90))
			Expect(report.TotalDurationSeconds).To(Equal(60))
			Expect(report.PostureStats[domain.PostureGood]).To(Equal(12))
			Expect(report.EarnedCoins).To(Equal(9))
			Expect(report.AIComment).To(Equal("Steady work."))

			Expect(store.Close()).To(Succeed())
			openLedger()

			Expect(ledger.Profile().TotalCoins).To(Equal(9))
			sessions := ledger.RecentSessions()
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].ID).To(Equal(report.ID))
		})

		It("should not pay twice when stopped again", func() {
			runFor(3)
			_, err := m.Stop(context.Background())
			Expect(err).NotTo(HaveOccurred())

			_, err = m.Stop(context.Background())
			Expect(err).To(MatchError(domain.ErrNoSession))
			Expect(ledger.RecentSessions()).To(HaveLen(1))
		})
	})

	Describe("a distracted session", func() {
		BeforeEach(func() {
			respond = func(n int32, w http.ResponseWriter) { _, _ = w.Write([]byte(badBody)) }
		})

		It("should nudge once and stay quiet during the cooldown", func() {
			runFor(4)

			spoken := narrator.Spoken()
			Expect(spoken).To(HaveLen(1))
			Expect(spoken[0].VoiceID).To(Equal(catalog.DefaultVoiceID))
			Expect(spoken[0].Text).To(Equal(registry.Voice(catalog.DefaultVoiceID).Nudge))
			Expect(m.Snapshot().Alert.ConsecutiveBadCount).To(Equal(2))
		})
	})

	Describe("a revoked API key", func() {
		BeforeEach(func() {
			respond = func(n int32, w http.ResponseWriter) {
				if n <= 2 {
					_, _ = w.Write([]byte(goodBody))
					return
				}
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":401,"status":"UNAUTHENTICATED","message":"bad key"}}`))
			}
		})

		It("should stop monitoring and still save what was collected", func() {
			runFor(3)
			clock.Advance(time.Minute)

			snap := m.Snapshot()
			Expect(snap.IsActive).To(BeFalse())
			Expect(snap.LastError).NotTo(BeEmpty())
			Expect(calls.Load()).To(Equal(int32(3)))
			Expect(clock.Pending()).To(Equal(0))

			report, err := m.Stop(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalDurationSeconds).To(Equal(10))
		})
	})

	Describe("spending coins", func() {
		It("should unlock and activate a theme bought with session earnings", func() {
			for i := 0; i < 6; i++ {
				runFor(12)
				_, err := m.Stop(context.Background())
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(ledger.Profile().TotalCoins).To(Equal(54))

			Expect(ledger.Purchase("midnight")).To(Succeed())
			Expect(ledger.SetActiveTheme("midnight")).To(Succeed())
			Expect(ledger.Purchase("forest")).To(MatchError(domain.ErrInsufficientCoins))

			Expect(store.Close()).To(Succeed())
			openLedger()

			profile := ledger.Profile()
			Expect(profile.TotalCoins).To(Equal(4))
			Expect(profile.ActiveThemeID).To(Equal("midnight"))
			Expect(profile.IsUnlocked("midnight")).To(BeTrue())
		})
	})
})
