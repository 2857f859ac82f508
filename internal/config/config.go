// Package config loads textspan settings from TOML with environment
// overrides.
//
// Precedence, lowest first: built-in defaults, the TOML file, then
// TEXTSPAN_* environment variables.
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[bracket]
//	highlight = true
//	max_scan_chars = 10000
//	context_classes = ["comment", "string"]
//
//	[highlight]
//	enabled = true
//	language = "go"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textspan/internal/bracket"
	"github.com/dshills/textspan/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEXTSPAN_"

// Config holds all settings.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Bracket   BracketConfig   `toml:"bracket"`
	Highlight HighlightConfig `toml:"highlight"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// BracketConfig configures bracket matching.
type BracketConfig struct {
	Highlight      bool     `toml:"highlight"`
	MaxScanChars   int      `toml:"max_scan_chars"`
	ContextClasses []string `toml:"context_classes"`
}

// HighlightConfig configures syntax analysis.
type HighlightConfig struct {
	Enabled  bool   `toml:"enabled"`
	Language string `toml:"language"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Bracket: BracketConfig{
			Highlight:      true,
			MaxScanChars:   bracket.DefaultMaxScanChars,
			ContextClasses: append([]string(nil), bracket.DefaultContextClasses...),
		},
		Highlight: HighlightConfig{
			Enabled: true,
		},
	}
}

// Load reads the TOML file at path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if cfg, err = parse(path, data, cfg); err != nil {
				return Config{}, err
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
// Environment variables are not consulted.
func Parse(data []byte) (Config, error) {
	cfg, err := parse("<data>", data, Default())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(source string, data []byte, base Config) (Config, error) {
	cfg := base
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			perr.Message = serr.String()
		}
		return Config{}, perr
	}
	return cfg, nil
}

// ApplyEnv applies TEXTSPAN_* overrides found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvPrefix + "LANGUAGE"); ok {
		c.Highlight.Language = v
	}
	if v, ok := lookup(EnvPrefix + "MAX_SCAN_CHARS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sMAX_SCAN_CHARS=%q: %v", ErrInvalidEnv, EnvPrefix, v, err)
		}
		c.Bracket.MaxScanChars = n
	}
	if v, ok := lookup(EnvPrefix + "HIGHLIGHT_BRACKETS"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sHIGHLIGHT_BRACKETS=%q: %v", ErrInvalidEnv, EnvPrefix, v, err)
		}
		c.Bracket.Highlight = b
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q", ErrValidationFailed, c.Log.Level)
	}
	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (want %q or %q)", ErrValidationFailed, c.Log.Format, logging.FormatConsole, logging.FormatJSON)
	}

	if n := len(c.Bracket.ContextClasses); n > bracket.MaxContextClasses {
		return fmt.Errorf("%w: bracket.context_classes has %d entries, at most %d allowed", ErrValidationFailed, n, bracket.MaxContextClasses)
	}
	for _, class := range c.Bracket.ContextClasses {
		if class == "" {
			return fmt.Errorf("%w: bracket.context_classes contains an empty name", ErrValidationFailed)
		}
	}
	return nil
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = c.Log.Format
	return cfg
}
