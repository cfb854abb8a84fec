// Package config loads interpreter settings from a TOML file and the
// BLC_* environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"

	"github.com/vic/goblc/pkg/execution"
	"github.com/vic/goblc/pkg/reduce"
)

type Config struct {
	Limits Limits `toml:"limits"`
	Run    Run    `toml:"run"`
	Log    Log    `toml:"log"`
}

// Limits bounds reduction; zero disables a bound.
type Limits struct {
	MaxSteps uint64 `toml:"max-steps"`
	MaxNodes uint64 `toml:"max-nodes"`
}

type Run struct {
	Strategy  string   `toml:"strategy"`
	Output    string   `toml:"output"`
	Timeout   Duration `toml:"timeout"`
	AllowFree bool     `toml:"allow-free"`
}

type Log struct {
	// Verbosity follows commonlog: 0 errors only, 1 warnings, 2 notices,
	// 3 info, 4 and up debug.
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
	// Trace is the number of machine events to record.
	Trace int `toml:"trace"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() Config {
	return Config{
		Limits: Limits{
			MaxSteps: reduce.DefaultLimits.MaxSteps,
			MaxNodes: reduce.DefaultLimits.MaxNodes,
		},
		Run: Run{
			Strategy: execution.StrategyGraph.String(),
			Output:   execution.ModeBytes.String(),
		},
	}
}

// Load reads a TOML file over the defaults. Keys the file sets but
// Config does not know are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment:
//
//	BLC_MAX_STEPS, BLC_MAX_NODES   limits
//	BLC_STRATEGY, BLC_OUTPUT       graph|tree, bytes|auto|term
//	BLC_TIMEOUT                    duration, e.g. 10s
//	BLC_ALLOW_FREE                 run open terms
//	BLC_VERBOSITY                  log verbosity
//	BLC_DEBUG                      any true value raises verbosity to debug
//	BLC_TRACE                      trace capacity
func (c *Config) ApplyEnv() error {
	var err error
	if c.Limits.MaxSteps, err = envUint("BLC_MAX_STEPS", c.Limits.MaxSteps); err != nil {
		return err
	}
	if c.Limits.MaxNodes, err = envUint("BLC_MAX_NODES", c.Limits.MaxNodes); err != nil {
		return err
	}
	c.Run.Strategy = env.Str("BLC_STRATEGY", c.Run.Strategy)
	c.Run.Output = env.Str("BLC_OUTPUT", c.Run.Output)
	if env.Has("BLC_TIMEOUT") {
		if err := c.Run.Timeout.UnmarshalText([]byte(env.Str("BLC_TIMEOUT"))); err != nil {
			return fmt.Errorf("BLC_TIMEOUT: %w", err)
		}
	}
	if env.Has("BLC_ALLOW_FREE") {
		c.Run.AllowFree = env.Bool("BLC_ALLOW_FREE")
	}
	c.Log.Verbosity = env.Int("BLC_VERBOSITY", c.Log.Verbosity)
	if env.Bool("BLC_DEBUG") && c.Log.Verbosity < 4 {
		c.Log.Verbosity = 4
	}
	c.Log.Trace = env.Int("BLC_TRACE", c.Log.Trace)
	return nil
}

func envUint(name string, def uint64) (uint64, error) {
	if !env.Has(name) {
		return def, nil
	}
	v, err := strconv.ParseUint(env.Str(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func (c Config) Validate() error {
	if _, err := execution.ParseStrategy(c.Run.Strategy); err != nil {
		return err
	}
	if _, err := execution.ParseMode(c.Run.Output); err != nil {
		return err
	}
	if c.Run.Timeout.Duration < 0 {
		return fmt.Errorf("negative timeout %v", c.Run.Timeout)
	}
	if c.Log.Trace < 0 {
		return fmt.Errorf("negative trace capacity %d", c.Log.Trace)
	}
	return nil
}

// ExecutionOptions converts the run settings.
func (c Config) ExecutionOptions() (execution.Options, error) {
	if err := c.Validate(); err != nil {
		return execution.Options{}, err
	}
	strategy, _ := execution.ParseStrategy(c.Run.Strategy)
	mode, _ := execution.ParseMode(c.Run.Output)
	return execution.Options{
		Limits:        reduce.Limits{MaxSteps: c.Limits.MaxSteps, MaxNodes: c.Limits.MaxNodes},
		Strategy:      strategy,
		Mode:          mode,
		Timeout:       c.Run.Timeout.Duration,
		AllowFree:     c.Run.AllowFree,
		TraceCapacity: c.Log.Trace,
	}, nil
}
