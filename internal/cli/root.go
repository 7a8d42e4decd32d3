package cli

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/catalog/internal/core/config"
)

var (
	cfgPath string
	isDebug bool

	cfg *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:               "catalog",
	Short:             "Catalog category service",
	Long:              `Catalog serves the category options of the product form, backed by the upstream catalog API.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setup loads .env and the configuration, then initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	loaded, err := loadConfig(cmd)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		return err
	}
	cfg = loaded

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	initLogging(slogLevel, cfg.Logging.Format)
	return nil
}

// initLogging installs the default logger: JSON lines for the json format,
// colored text otherwise.
func initLogging(level slog.Level, format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return
	}
	stylelog.InitDefault(&tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
}

// loadConfig falls back to defaults when the default config file is absent.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return config.Load(cfgPath)
}
