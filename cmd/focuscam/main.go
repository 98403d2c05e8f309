// Package main is the CLI entry point for focuscam.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/focuscam/internal/catalog"
	"github.com/eliteGoblin/focusd/focuscam/internal/config"
	"github.com/eliteGoblin/focusd/focuscam/internal/infra"
	"github.com/eliteGoblin/focusd/focuscam/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "focuscam",
	Short: "Webcam study companion",
	Long: `focuscam watches your webcam while you study, scores your concentration
and posture, nudges you out loud when you drift, and runs a pomodoro timer.
Finished sessions earn coins that unlock voices and themes.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a monitoring session (Ctrl-C ends it and prints the report)",
	Long: `Starts capturing frames at the configured interval until interrupted.
Send SIGHUP to restart the pomodoro timer. On exit the session is summarized,
saved, and rewarded.`,
	RunE: runSession,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is running and the wallet balance",
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent session reports",
	Long:  `Lists the most recent session reports, newest first. Use --clear to delete them; coins are kept.`,
	RunE:  runHistory,
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show coins, owned items and active preferences",
	RunE:  runWallet,
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "List voices and themes with their prices",
	RunE:  runShop,
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy <item-id>",
	Short: "Buy a voice or theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuy,
}

var useCmd = &cobra.Command{
	Use:       "use <theme|voice> <item-id>",
	Short:     "Select the active theme or voice",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"theme", "voice"},
	RunE:      runUse,
}

var previewCmd = &cobra.Command{
	Use:   "preview [voice-id]",
	Short: "Play the sample phrase of a voice (defaults to the active one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPreview,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  `Shows settings and environment in effect. Use --init to write the settings file with current values.`,
	RunE:  runConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	jsonOutput   bool
	clearHistory bool
	initConfig   bool
	frameFile    string
)

func init() {
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "Delete all stored session reports")
	configCmd.Flags().BoolVar(&initConfig, "init", false, "Write the settings file")
	runCmd.Flags().StringVar(&frameFile, "frame-file", "", "Analyze a still image instead of the camera")

	shopCmd.AddCommand(shopBuyCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// app bundles what every command loads first.
type app struct {
	env      config.Env
	paths    infra.Paths
	settings config.Settings
	registry *catalog.Registry
	logger   *zap.Logger
}

func loadApp() (*app, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	paths := infra.ResolvePaths(env.DataDir)
	if err := paths.Ensure(); err != nil {
		return nil, err
	}

	logger := createLogger(paths.LogPath, env.LogLevel)

	settings, err := config.LoadSettings(paths.SettingsPath)
	if err != nil {
		logger.Warn("using default settings", zap.Error(err))
	}

	return &app{
		env:      env,
		paths:    paths,
		settings: settings,
		registry: catalog.NewRegistry(),
		logger:   logger,
	}, nil
}

// openLedger opens the encrypted store and loads the profile.
// The returned close function releases the store.
func (a *app) openLedger() (*usecase.Ledger, func(), error) {
	store, err := infra.OpenStore(a.paths.DataDir)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := usecase.NewLedger(store, a.registry, a.logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return ledger, func() { _ = store.Close() }, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func createLogger(path, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	logger, err := cfg.Build()
	if err != nil {
		// Fallback to stdout if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("focuscam %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
