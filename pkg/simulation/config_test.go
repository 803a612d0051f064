package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_KeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"numBoids": 50, "walls": true, "speed": 7.5}`))
	require.NoError(t, err)

	want := DefaultConfig()
	want.NumBoids = 50
	want.Walls = true
	want.Speed = 7.5
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("ParseConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfig_KeepsOutOfRangeValues(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"numBoids": 0, "speed": 99, "avoidDistance": 1000, "cohesionDistance": 10}`))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.NumBoids)
	assert.Equal(t, 99.0, cfg.Speed)
	require.Error(t, cfg.Validate())

	cfg.Normalize()
	assert.Equal(t, DefaultNumBoids, cfg.NumBoids)
	assert.Equal(t, MaxSpeed, cfg.Speed)
	assert.Equal(t, MaxAvoidDistance, cfg.AvoidDistance)
	assert.Equal(t, uint(10), cfg.CohesionDistance)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{numBoids`},
		{"wrong type", `{"numBoids": "many"}`},
		{"unknown key", `{"flockSize": 10}`},
		{"dead angle above 360", `{"deadAngle": 400}`},
		{"negative distance", `{"alignDistance": -1}`},
		{"bad log level", `{"logLevel": "verbose"}`},
		{"zero speed", `{"speed": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"worldWidth": 800, "worldHeight": 600, "seed": 77}`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.WorldWidth)
	assert.Equal(t, 600, cfg.WorldHeight)
	assert.Equal(t, uint64(77), cfg.Seed)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfig_Normalize(t *testing.T) {
	cfg := &Config{FrameDelayMs: -5, DeadAngle: 500}
	cfg.Normalize()

	assert.Equal(t, DefaultWidth, cfg.WorldWidth)
	assert.Equal(t, DefaultHeight, cfg.WorldHeight)
	assert.Equal(t, DefaultNumBoids, cfg.NumBoids)
	assert.Equal(t, MinSpeed, cfg.Speed)
	assert.Equal(t, MaxDeadAngle, cfg.DeadAngle)
	assert.Equal(t, 0, cfg.FrameDelayMs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero width", func(c *Config) { c.WorldWidth = 0 }, "worldWidth"},
		{"negative height", func(c *Config) { c.WorldHeight = -1 }, "worldHeight"},
		{"too many boids", func(c *Config) { c.NumBoids = MaxBoids + 1 }, "numBoids"},
		{"slow", func(c *Config) { c.Speed = 0.5 }, "speed"},
		{"far avoid", func(c *Config) { c.AvoidDistance = MaxAvoidDistance + 1 }, "avoidDistance"},
		{"far align", func(c *Config) { c.AlignDistance = MaxAlignDistance + 1 }, "alignDistance"},
		{"far cohesion", func(c *Config) { c.CohesionDistance = MaxCohesionDistance + 1 }, "cohesionDistance"},
		{"wide dead angle", func(c *Config) { c.DeadAngle = 361 }, "deadAngle"},
		{"negative delay", func(c *Config) { c.FrameDelayMs = -1 }, "frameDelayMs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)

			cfg.Normalize()
			assert.NoError(t, cfg.Validate(), "Normalize fixes what Validate reports")
		})
	}
}
