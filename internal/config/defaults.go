package config

import (
	"runtime"

	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
)

// Default configuration values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultOutput    = OutputText
	DefaultEnvPrefix = "SQLREWRITE_"
)

// Config file names, in lookup order.
var configFileNames = []string{"sqlrewrite.yaml", "sqlrewrite.yml"}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dialect:       dialect.DefaultName,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Output:        DefaultOutput,
		MinSimilarity: rewrite.DefaultMinSimilarity,
		Concurrency:   runtime.GOMAXPROCS(0),
	}
}

// defaultsMap is Default flattened to koanf keys.
func defaultsMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"dialect":        d.Dialect,
		"log_level":      d.LogLevel,
		"log_format":     d.LogFormat,
		"output":         d.Output,
		"exact_replace":  d.ExactReplace,
		"min_similarity": d.MinSimilarity,
		"today":          d.Today,
		"concurrency":    d.Concurrency,
		"functions_dir":  d.FunctionsDir,
		"verify.driver":  "",
		"verify.dsn":     "",
	}
}
