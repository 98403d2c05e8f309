package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
	"github.com/eliteGoblin/focusd/focuscam/internal/infra"
	"github.com/eliteGoblin/focusd/focuscam/internal/monitor"
	"github.com/eliteGoblin/focusd/focuscam/internal/telemetry"
	"github.com/eliteGoblin/focusd/focuscam/internal/usecase"
)

const (
	eventBuffer  = 64
	statePoll    = time.Second
	closeTimeout = 45 * time.Second
)

func runSession(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	guard := infra.NewInstanceGuard(a.paths.PIDPath)
	if err := guard.Acquire(); err != nil {
		if errors.Is(err, domain.ErrAlreadyRunning) {
			fmt.Println("A session is already running. Use 'focuscam status' to check.")
		}
		return err
	}
	defer func() { _ = guard.Release() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:  a.env.OTelEnabled,
		Endpoint: a.env.OTelEndpoint,
	})
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	ledger, closeStore, err := a.openLedger()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer closeStore()

	m := newMonitor(a, ledger, false)
	events := m.Subscribe(eventBuffer)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	m.Start(ctx)
	fmt.Printf("Monitoring every %s with the %s voice. Press Ctrl-C to finish.\n",
		m.Interval(), a.registry.Voice(ledger.ActiveVoiceID()).Name())

	watchEvents(ctx, events, hup, m, statePoll)

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	report, err := m.Stop(closeCtx)
	m.Close()

	switch {
	case errors.Is(err, domain.ErrNothingToSummarize):
		fmt.Println("No samples were collected, nothing to save.")
		return nil
	case err != nil:
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Println()
	fmt.Print(renderReport(*report))
	fmt.Printf("Wallet: %s coins\n", color.YellowString("%d", ledger.Profile().TotalCoins))
	return nil
}

// sessionControl is the part of the monitor the event loop drives.
type sessionControl interface {
	Snapshot() domain.SessionSnapshot
	ResetPomodoro()
}

// watchEvents prints monitor events until ctx is cancelled or the
// session deactivates on its own. The session state is also polled every
// poll interval since the bus drops events for a full subscriber.
func watchEvents(ctx context.Context, events <-chan monitor.Event, hup <-chan os.Signal, m sessionControl, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			m.ResetPomodoro()
			fmt.Println(color.CyanString("pomodoro restarted"))
		case <-ticker.C:
			if !m.Snapshot().IsActive {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if line := renderEvent(event); line != "" {
				fmt.Println(line)
			}
			if event.Type == monitor.EventStateChange && !event.Active {
				return
			}
		}
	}
}

// newMonitor wires the engine. Preview speaks inline so the process
// does not exit before the phrase is played.
func newMonitor(a *app, ledger *usecase.Ledger, inlineSpeech bool) *monitor.Monitor {
	logger := a.logger

	player := infra.NewCommandPlayer(a.settings.PlayerCommand)
	narration := infra.NewHTTPNarration(a.env.NarrationURL, a.env.NarrationKey, player)
	local := infra.NewLocalTTS(a.settings.SpeechCommand)

	var announcer *usecase.Announcer
	if inlineSpeech {
		announcer = usecase.NewSyncAnnouncer(narration, local, logger)
	} else {
		announcer = usecase.NewAnnouncer(narration, local, logger)
	}

	var frames domain.FrameSource = infra.NewCommandFrameSource(a.settings.CaptureCommand)
	if frameFile != "" {
		frames = infra.NewFileFrameSource(frameFile)
	}

	clock := monitor.SystemClock{}
	summarizer := usecase.NewSessionSummarizer(narration, ledger, clock, logger)

	return monitor.New(a.settings.MonitorConfig(), monitor.Deps{
		Frames:     frames,
		Encoder:    infra.NewJPEGEncoder(a.settings.MaxFrameWidth, a.settings.JPEGQuality),
		Perception: infra.NewHTTPPerception(a.env.PerceptionURL, a.env.APIKey),
		Speaker:    announcer,
		Voices:     ledger,
		Summarizer: summarizer,
		Registry:   a.registry,
		Clock:      clock,
	}, logger)
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ledger, closeStore, err := a.openLedger()
	if err != nil {
		return err
	}
	defer closeStore()

	voiceID := ""
	if len(args) == 1 {
		voiceID = args[0]
	}

	m := newMonitor(a, ledger, true)
	defer m.Close()
	if err := m.Preview(voiceID); err != nil {
		if errors.Is(err, domain.ErrUnknownItem) {
			return fmt.Errorf("no voice named %q, see 'focuscam shop'", voiceID)
		}
		return err
	}
	return nil
}
