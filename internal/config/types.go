// Package config loads sqlrewrite configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the
// sqlrewrite.yaml file, SQLREWRITE_ environment variables and explicitly
// set command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	Dialect       string       `koanf:"dialect"`
	LogLevel      string       `koanf:"log_level"`
	LogFormat     string       `koanf:"log_format"`
	Output        string       `koanf:"output"`
	ExactReplace  bool         `koanf:"exact_replace"`
	MinSimilarity float64      `koanf:"min_similarity"`
	Today         string       `koanf:"today"` // YYYY-MM-DD; empty for the system clock
	Concurrency   int          `koanf:"concurrency"`
	FunctionsDir  string       `koanf:"functions_dir"`
	Verify        VerifyConfig `koanf:"verify"`

	file string
}

// File returns the config file that was loaded, if any.
func (c *Config) File() string {
	return c.file
}

// VerifyConfig holds the database used to check rewritten SQL.
type VerifyConfig struct {
	Driver string `koanf:"driver"` // sqlite, postgres
	DSN    string `koanf:"dsn"`
}

// Enabled reports whether a verify database is configured.
func (v VerifyConfig) Enabled() bool {
	return v.Driver != "" && v.DSN != ""
}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)
