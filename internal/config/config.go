package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"bbcbasic/pkg/eval"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds the interpreter limits and terminal settings.
type Config struct {
	MaxDepth    int           `yaml:"max_depth"`    // expression nesting inside one body
	MaxCalls    int           `yaml:"max_calls"`    // active FN and PROC calls
	StackLimit  int           `yaml:"stack_limit"`  // operand stack entries
	MaxSteps    int           `yaml:"max_steps"`    // statements per run, 0 = unlimited
	NoColor     bool          `yaml:"no_color"`     // plain terminal output
	Verbose     bool          `yaml:"verbose"`      // debug logging and token listings
	Trace       bool          `yaml:"trace"`        // dump interpreter state on errors
	History     string        `yaml:"history"`      // REPL history file
	DialTimeout time.Duration `yaml:"dial_timeout"` // OPENUP connect timeout
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxDepth:    eval.DefaultMaxDepth,
		MaxCalls:    eval.DefaultMaxCalls,
		StackLimit:  eval.DefaultStackLimit,
		History:     ".bbcbasic_history",
		DialTimeout: 5 * time.Second,
	}
}

// Load applies the YAML file at path (or $BBCBASIC_CONFIG when path is
// empty) and then the environment on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = env.Str("BBCBASIC_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.MaxDepth = env.Int("BBCBASIC_MAX_DEPTH", c.MaxDepth)
	c.MaxCalls = env.Int("BBCBASIC_MAX_CALLS", c.MaxCalls)
	c.StackLimit = env.Int("BBCBASIC_STACK_LIMIT", c.StackLimit)
	c.MaxSteps = env.Int("BBCBASIC_MAX_STEPS", c.MaxSteps)
	c.History = env.Str("BBCBASIC_HISTORY", c.History)

	if env.Has("NO_COLOR") {
		c.NoColor = true
	}
	if env.Bool("BBCBASIC_TRACE") {
		c.Trace = true
	}
}

// Validate checks the limits are usable.
func (c Config) Validate() error {
	switch {
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalid, c.MaxDepth)
	case c.MaxCalls <= 0:
		return fmt.Errorf("%w: max_calls must be positive, got %d", ErrInvalid, c.MaxCalls)
	case c.StackLimit <= 0:
		return fmt.Errorf("%w: stack_limit must be positive, got %d", ErrInvalid, c.StackLimit)
	case c.MaxSteps < 0:
		return fmt.Errorf("%w: max_steps must not be negative, got %d", ErrInvalid, c.MaxSteps)
	case c.DialTimeout < 0:
		return fmt.Errorf("%w: dial_timeout must not be negative", ErrInvalid)
	}
	return nil
}
