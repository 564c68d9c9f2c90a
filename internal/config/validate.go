package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
)

const todayLayout = "2006-01-02"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := dialect.Get(c.Dialect); !ok {
		return fmt.Errorf("unknown dialect %q (available: %s)", c.Dialect, strings.Join(dialect.List(), ", "))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("output must be text or json, got %q", c.Output)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be between 0 and 1, got %v", c.MinSimilarity)
	}
	if c.Today != "" {
		if _, err := time.Parse(todayLayout, c.Today); err != nil {
			return fmt.Errorf("today must be a YYYY-MM-DD date: %w", err)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if (c.Verify.Driver == "") != (c.Verify.DSN == "") {
		return fmt.Errorf("verify.driver and verify.dsn must be set together")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// NewLogger builds the logger described by the configuration.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Clock returns the clock that resolves today in date-diff filters.
func (c *Config) Clock() func() time.Time {
	if c.Today == "" {
		return time.Now
	}
	day, err := time.Parse(todayLayout, c.Today)
	if err != nil {
		return time.Now
	}
	return func() time.Time { return day }
}

// OutputDialect returns the configured dialect, or the default one.
func (c *Config) OutputDialect() *dialect.Dialect {
	if d, ok := dialect.Get(c.Dialect); ok {
		return d
	}
	return dialect.Default()
}

// NewRewriter builds a rewriter from the configuration.
func (c *Config) NewRewriter(logger *slog.Logger) *rewrite.Rewriter {
	return rewrite.New(
		rewrite.WithLogger(logger),
		rewrite.WithDialect(c.OutputDialect()),
		rewrite.WithClock(c.Clock()),
		rewrite.WithMinSimilarity(c.MinSimilarity),
	)
}
