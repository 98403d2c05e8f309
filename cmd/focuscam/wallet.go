package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eliteGoblin/focusd/focuscam/internal/config"
	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
	"github.com/eliteGoblin/focusd/focuscam/internal/infra"
	"github.com/eliteGoblin/focusd/focuscam/internal/usecase"
)

// withLedger loads the app and the ledger for a single command.
func withLedger(fn func(a *app, ledger *usecase.Ledger) error) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ledger, closeStore, err := a.openLedger()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer closeStore()

	return fn(a, ledger)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withLedger(func(a *app, ledger *usecase.Ledger) error {
		fmt.Println("\n=== focuscam Status ===")

		guard := infra.NewInstanceGuard(a.paths.PIDPath)
		if pid, ok := guard.Owner(); ok {
			fmt.Printf("Session: %s (pid %d)\n", color.GreenString("RUNNING"), pid)
		} else {
			fmt.Printf("Session: %s\n", color.YellowString("IDLE"))
		}

		profile := ledger.Profile()
		fmt.Printf("Coins: %d\n", profile.TotalCoins)
		fmt.Printf("Voice: %s\n", a.registry.Voice(profile.ActiveVoiceID).Name())
		fmt.Printf("Interval: %s\n", a.settings.Interval)
		fmt.Printf("Pomodoro: %s work / %s break\n", a.settings.Work, a.settings.Break)

		if sessions := ledger.RecentSessions(); len(sessions) > 0 {
			last := sessions[0]
			fmt.Printf("Last session: %s, score %d, +%d coins\n",
				last.CreatedAt.Local().Format(timeLayout), last.AverageScore, last.EarnedCoins)
		}
		fmt.Printf("Data dir: %s\n", a.paths.DataDir)
		fmt.Println("=======================")
		return nil
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withLedger(func(a *app, ledger *usecase.Ledger) error {
		if clearHistory {
			if err := ledger.ClearHistory(); err != nil {
				return err
			}
			fmt.Println("Session history cleared.")
			return nil
		}
		fmt.Print(renderHistory(ledger.RecentSessions()))
		return nil
	})
}

func runWallet(cmd *cobra.Command, args []string) error {
	return withLedger(func(a *app, ledger *usecase.Ledger) error {
		fmt.Print(renderWallet(ledger.Profile(), a.registry))
		return nil
	})
}

func runShop(cmd *cobra.Command, args []string) error {
	return withLedger(func(a *app, ledger *usecase.Ledger) error {
		profile := ledger.Profile()
		fmt.Print(renderShop(a.registry, profile))
		fmt.Printf("\nBalance: %s coins\n", color.YellowString("%d", profile.TotalCoins))
		return nil
	})
}

func runBuy(cmd *cobra.Command, args []string) error {
	itemID := args[0]
	return withLedger(func(a *app, ledger *usecase.Ledger) error {
		err := ledger.Purchase(itemID)
		switch {
		case errors.Is(err, domain.ErrUnknownItem):
			return fmt.Errorf("no item named %q, see 'focuscam shop'", itemID)
		case errors.Is(err, domain.ErrAlreadyUnlocked):
			fmt.Printf("You already own %s.\n", itemID)
			return nil
		case errors.Is(err, domain.ErrInsufficientCoins):
			item, _ := a.registry.Get(itemID)
			return fmt.Errorf("%s costs %d coins, you have %d", item.Name(), item.Price(), ledger.Profile().TotalCoins)
		case err != nil:
			return err
		}

		item, _ := a.registry.Get(itemID)
		fmt.Printf("Unlocked %s. Balance: %d coins\n", item.Name(), ledger.Profile().TotalCoins)
		return nil
	})
}

func runUse(cmd *cobra.Command, args []string) error {
	kind, itemID := args[0], args[1]
	return withLedger(func(a *app, ledger *usecase.Ledger) error {
		var err error
		switch kind {
		case "theme":
			err = ledger.SetActiveTheme(itemID)
		case "voice":
			err = ledger.SetActiveVoice(itemID)
		default:
			return fmt.Errorf("unknown kind %q, expected theme or voice", kind)
		}

		switch {
		case errors.Is(err, domain.ErrUnknownItem):
			return fmt.Errorf("no %s named %q", kind, itemID)
		case errors.Is(err, domain.ErrItemLocked):
			return fmt.Errorf("%s is locked, buy it with 'focuscam shop buy %s'", itemID, itemID)
		case err != nil:
			return err
		}
		fmt.Printf("Active %s: %s\n", kind, itemID)
		return nil
	})
}

func runConfig(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	if initConfig {
		if err := config.SaveSettings(a.paths.SettingsPath, a.settings); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", a.paths.SettingsPath)
	}

	s := a.settings
	fmt.Println("\n=== focuscam Config ===")
	fmt.Printf("Settings file:   %s\n", a.paths.SettingsPath)
	fmt.Printf("Session store:   %s\n", a.paths.StorePath)
	fmt.Printf("Store key:       %s\n", a.paths.KeyPath)
	fmt.Printf("Interval:        %s\n", s.Interval)
	fmt.Printf("Alert threshold: %d\n", s.AlertThreshold)
	fmt.Printf("Work / break:    %s / %s\n", s.Work, s.Break)
	fmt.Printf("JPEG:            %d px, quality %d\n", s.MaxFrameWidth, s.JPEGQuality)
	fmt.Printf("Capture command: %s\n", orDefault(s.CaptureCommand, infra.DefaultCaptureCommand()))
	fmt.Printf("Player command:  %s\n", orDefault(s.PlayerCommand, infra.DefaultPlayerCommand()))
	fmt.Printf("Speech command:  %s\n", orDefault(s.SpeechCommand, infra.DefaultSpeechCommand()))
	fmt.Printf("Perception URL:  %s\n", orDefault(a.env.PerceptionURL, color.RedString("not set")))
	fmt.Printf("API key:         %s\n", maskSecret(a.env.APIKey))
	fmt.Printf("Narration URL:   %s\n", orDefault(a.env.NarrationURL, "not set (local speech only)"))
	fmt.Printf("Tracing:         %t (%s)\n", a.env.OTelEnabled, a.env.OTelEndpoint)
	fmt.Println("=======================")
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func maskSecret(secret string) string {
	if secret == "" {
		return color.RedString("not set")
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
