// Package cli holds the command line plumbing shared by the boids front ends:
// flag and environment binding, config loading and logger setup.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

// EnvPrefix prefixes every environment override, e.g. BOIDS_NUM_BOIDS.
const EnvPrefix = "BOIDS"

// Env is what a command gets once flags, environment and config file are merged.
type Env struct {
	Config *simulation.Config
	Logger log.Logger
	Viper  *viper.Viper

	closeLog func() error
}

// Close flushes and closes the log file, if any.
func (e *Env) Close() error {
	if e.closeLog == nil {
		return nil
	}
	return e.closeLog()
}

// Shutdown closes the environment and logs a failure instead of returning it,
// for use in a defer.
func (e *Env) Shutdown() {
	if err := e.Close(); err != nil {
		e.Logger.Errorf("failed to close log file: %v", err)
	}
}

// override copies one flag or environment value into the config.
type override struct {
	flag  string
	apply func(v *viper.Viper, key string, c *simulation.Config)
}

var overrides = []override{
	{"width", func(v *viper.Viper, k string, c *simulation.Config) { c.WorldWidth = v.GetInt(k) }},
	{"height", func(v *viper.Viper, k string, c *simulation.Config) { c.WorldHeight = v.GetInt(k) }},
	{"num-boids", func(v *viper.Viper, k string, c *simulation.Config) { c.NumBoids = v.GetInt(k) }},
	{"speed", func(v *viper.Viper, k string, c *simulation.Config) { c.Speed = v.GetFloat64(k) }},
	{"walls", func(v *viper.Viper, k string, c *simulation.Config) { c.Walls = v.GetBool(k) }},
	{"predator", func(v *viper.Viper, k string, c *simulation.Config) { c.Predator = v.GetBool(k) }},
	{"rand-seed", func(v *viper.Viper, k string, c *simulation.Config) { c.Seed = v.GetUint64(k) }},
	{"debug-controls", func(v *viper.Viper, k string, c *simulation.Config) { c.DebugControls = v.GetBool(k) }},
	{"debug-vectors", func(v *viper.Viper, k string, c *simulation.Config) { c.DebugVectors = v.GetBool(k) }},
	{"frame-delay", func(v *viper.Viper, k string, c *simulation.Config) { c.FrameDelayMs = v.GetInt(k) }},
	{"log-level", func(v *viper.Viper, k string, c *simulation.Config) { c.LogLevel = v.GetString(k) }},
	{"log-file", func(v *viper.Viper, k string, c *simulation.Config) { c.LogFile = v.GetString(k) }},
}

// BindFlags registers the flags shared by every front end on cmd and binds
// them, with their BOIDS_* environment counterparts, to v.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	d := simulation.DefaultConfig()
	f := cmd.PersistentFlags()

	f.StringP("config", "c", "", "JSON config file")
	f.Int("width", d.WorldWidth, "field width in pixels")
	f.Int("height", d.WorldHeight, "field height in pixels")
	f.IntP("num-boids", "n", d.NumBoids, fmt.Sprintf("number of boids [%d-%d]", simulation.MinBoids, simulation.MaxBoids))
	f.Float64("speed", d.Speed, "boid speed in pixels per step")
	f.BoolP("walls", "w", d.Walls, "add walls to the field")
	f.Bool("predator", d.Predator, "release a predator")
	f.Uint64P("rand-seed", "s", d.Seed, "seed for the random generator (0 picks one)")
	f.BoolP("debug-controls", "d", d.DebugControls, "show the debug controls")
	f.Bool("debug-vectors", d.DebugVectors, "capture per-rule vectors")
	f.Int("frame-delay", d.FrameDelayMs, "minimum milliseconds between steps")
	f.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	f.String("log-file", d.LogFile, "also write logs to this file, rotated")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(f); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// LoadConfig builds the simulation config. Precedence is flag, then
// environment, then the --config file, then defaults. Out of range values are
// clamped.
func LoadConfig(v *viper.Viper) (*simulation.Config, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// loadConfig merges the sources without clamping.
func loadConfig(v *viper.Viper) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := simulation.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	for _, o := range overrides {
		if v.IsSet(o.flag) {
			o.apply(v, o.flag, cfg)
		}
	}
	return cfg, nil
}

// Setup loads the config and builds the logger. Console output goes to stderr.
func Setup(v *viper.Viper) (*Env, error) {
	return setup(v, os.Stderr)
}

func setup(v *viper.Viper, console io.Writer) (*Env, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	adjusted := cfg.Validate()
	cfg.Normalize()

	logger, closeLog, err := NewLogger(cfg.LogLevel, cfg.LogFile, console)
	if err != nil {
		return nil, err
	}
	if adjusted != nil {
		logger.Warnf("config values clamped: %v", adjusted)
	}
	return &Env{Config: cfg, Logger: logger, Viper: v, closeLog: closeLog}, nil
}
