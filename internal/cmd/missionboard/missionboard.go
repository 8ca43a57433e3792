// Package missionboard parses missionboard command flags and runs one
// subcommand against a board session.
package missionboard

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/missionboard/internal/platform/cmd"
	apperrors "github.com/louisbranch/missionboard/internal/platform/errors"
	"github.com/louisbranch/missionboard/internal/platform/i18n"
	"github.com/louisbranch/missionboard/internal/platform/logging"
	"github.com/louisbranch/missionboard/internal/services/board/app"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
)

// ErrUsage marks errors caused by a malformed command line.
var ErrUsage = errors.New("usage")

// IsUsage reports whether err was caused by the caller's input: a malformed
// command line or a rejected argument.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage) || apperrors.HasCode(err, apperrors.CodeValidation)
}

// Config holds missionboard command configuration.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	APIToken       string        `env:"API_TOKEN"`
	CachePath      string        `env:"CACHE_PATH" envDefault:"data/missionboard-cache.db"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	Username       string        `env:"USERNAME"`
	DisplayName    string        `env:"DISPLAY_NAME"`
	Locale         string        `env:"LOCALE" envDefault:"en-US"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	InMemory     bool
	PrintMetrics bool
	NameFilter   string
	StatusFilter string

	Command string
	Args    []string
}

// ParseConfig parses environment and flags into Config. The first
// positional argument is the subcommand.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Mission board API origin")
	fs.StringVar(&cfg.CachePath, "cache-path", cfg.CachePath, "SQLite cache file")
	fs.BoolVar(&cfg.InMemory, "in-memory", false, "Keep the cache in memory for this run")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request API timeout")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "Session username")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Message locale ("+supportedLocales()+")")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fs.BoolVar(&cfg.PrintMetrics, "metrics", false, "Print client metrics after the command")
	fs.StringVar(&cfg.NameFilter, "name", "", "Mission name filter for the missions command")
	fs.StringVar(&cfg.StatusFilter, "status", "", "Mission status filter for the missions command")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, fmt.Errorf("%w: missing command", ErrUsage)
	}
	cfg.Command = strings.TrimSpace(rest[0])
	cfg.Args = rest[1:]
	if cfg.InMemory {
		cfg.CachePath = ""
	}
	if cfg.StatusFilter != "" && !domain.MissionStatus(cfg.StatusFilter).Valid() {
		return Config{}, fmt.Errorf("%w: unknown status %q", ErrUsage, cfg.StatusFilter)
	}
	return cfg, nil
}

func supportedLocales() string {
	tags := i18n.SupportedTags()
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.String())
	}
	return strings.Join(names, ", ")
}

// Run executes the configured command, writing results to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceMissionBoard, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return execute(ctx, cfg, logger, out)
	})
}

func execute(ctx context.Context, cfg Config, logger logrus.FieldLogger, out io.Writer) error {
	cmd, ok := commands[cfg.Command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cfg.Command)
	}
	if len(cfg.Args) < cmd.minArgs {
		return fmt.Errorf("%w: %s %s", ErrUsage, cfg.Command, cmd.usage)
	}

	registry := prometheus.NewRegistry()
	session, err := app.NewSession(ctx, app.Config{
		APIBaseURL:     cfg.APIBaseURL,
		APIToken:       cfg.APIToken,
		RequestTimeout: cfg.RequestTimeout,
		CachePath:      cfg.CachePath,
		Username:       cfg.Username,
		DisplayName:    cfg.DisplayName,
		Locale:         cfg.Locale,
		Logger:         logger,
		Registerer:     registry,
		SkipRoomSync:   !cmd.rooms,
	})
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		_ = session.Close()
	}()

	if err := cmd.run(ctx, session, cfg, out); err != nil {
		return err
	}
	if cfg.PrintMetrics {
		return writeMetrics(registry, out)
	}
	return nil
}

func writeMetrics(registry *prometheus.Registry, out io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(out, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
