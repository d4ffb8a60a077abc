package regextrie

import (
	"log/slog"

	"github.com/coregx/coregex"
	"github.com/coregx/coregex/meta"
)

// Config controls how patterns are compiled, scored and indexed.
//
// Example:
//
//	config := regextrie.DefaultConfig()
//	config.Scorer = regextrie.URLPathScorer
//	config.Logger = slog.Default()
//	trie, err := regextrie.NewWithConfig(config)
type Config struct {
	// Scorer ranks patterns for FindBestMatch; lower wins.
	// Default: DefaultScorer (nil also means DefaultScorer)
	Scorer Scorer

	// EnablePrefilter builds, for every regex pattern, a check on the
	// literals each of its matches must contain. Candidates whose literals
	// are absent from the input skip the regex engine.
	// Default: true
	EnablePrefilter bool

	// MaxLiterals caps the number of alternative literals a prefilter looks
	// for. Patterns needing more are evaluated without prefilter.
	// Default: 64
	MaxLiterals int

	// Engine is passed to the regex engine for every compiled pattern.
	// Engine.EnablePrefilter must stay false: the engine's own literal
	// prefilter reports wrong match offsets for some patterns (`a{0}b`,
	// `[a-c]+x`, `(?i)abc`), which breaks whole-input matching. Candidates
	// are filtered by EnablePrefilter above instead.
	// Default: coregex.DefaultConfig() with EnablePrefilter off
	Engine meta.Config

	// Logger receives debug records about indexed and rejected patterns.
	// Default: nil (no logging)
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
//
// Example:
//
//	config := regextrie.DefaultConfig()
//	config.EnablePrefilter = false // always run the regex engine
func DefaultConfig() Config {
	engine := coregex.DefaultConfig()
	engine.EnablePrefilter = false

	return Config{
		Scorer:          DefaultScorer,
		EnablePrefilter: true,
		MaxLiterals:     64,
		Engine:          engine,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any parameter is out of range.
//
// Valid ranges:
//   - MaxLiterals: 1 to 1,000 (when EnablePrefilter is set)
//   - Engine: see meta.Config.Validate, with Engine.EnablePrefilter off
func (c Config) Validate() error {
	if c.EnablePrefilter && (c.MaxLiterals < 1 || c.MaxLiterals > 1_000) {
		return &ConfigError{
			Field:   "MaxLiterals",
			Message: "must be between 1 and 1,000",
		}
	}

	if c.Engine.EnablePrefilter {
		return &ConfigError{
			Field:   "Engine.EnablePrefilter",
			Message: "must be false, the engine prefilter breaks whole-input matching",
		}
	}

	if err := c.Engine.Validate(); err != nil {
		return &ConfigError{
			Field:   "Engine",
			Message: err.Error(),
		}
	}

	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "regextrie: invalid config: " + e.Field + ": " + e.Message
}
