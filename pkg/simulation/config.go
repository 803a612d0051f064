package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Field and population bounds.
const (
	DefaultWidth  = 1024
	DefaultHeight = 576

	MinBoids        = 1
	MaxBoids        = 10000
	DefaultNumBoids = 400
)

// Motion bounds. Rule distances are clamped independently of each other.
const (
	MinSpeed     = 1.0
	MaxSpeed     = 20.0
	DefaultSpeed = 5.0

	MinAvoidDistance     uint = 0
	MaxAvoidDistance     uint = 100
	DefaultAvoidDistance uint = 25

	MinAlignDistance     uint = 0
	MaxAlignDistance     uint = 300
	DefaultAlignDistance uint = 120

	MinCohesionDistance     uint = 0
	MaxCohesionDistance     uint = 500
	DefaultCohesionDistance uint = 200

	MaxDeadAngle     uint = 360
	DefaultDeadAngle uint = 60

	// DefaultFrameDelayMs paces front ends at roughly 50 steps per second.
	DefaultFrameDelayMs = 20
)

// Obstacle geometry, in pixels.
const (
	// ObstacleRadius is the drawn size of a point obstacle and the hit radius used for removal.
	ObstacleRadius = 10.0
	// WallSpacing is the distance between wall points and the dedup radius for point obstacles.
	WallSpacing = ObstacleRadius / 2

	ObstacleAvoidRadius   = 40.0
	AttractantAvoidRadius = 150.0
	PredatorAvoidRadius   = 200.0
)

//go:embed config.schema.json
var configSchema []byte

const configSchemaURL = "config.schema.json"

// Config holds everything needed to build a Swarm and its front end.
type Config struct {
	// World Dimensions
	WorldWidth  int `json:"worldWidth"`
	WorldHeight int `json:"worldHeight"`

	// Population
	NumBoids int `json:"numBoids"`

	Speed float64 `json:"speed"`

	// Rules
	Avoid            bool `json:"avoid"`
	Align            bool `json:"align"`
	Cohesion         bool `json:"cohesion"`
	DeadAngleEnabled bool `json:"deadAngleEnabled"`

	// Rule distances should satisfy avoid < align < cohesion; see Swarm.SetRuleDistance.
	AvoidDistance    uint `json:"avoidDistance"`
	AlignDistance    uint `json:"alignDistance"`
	CohesionDistance uint `json:"cohesionDistance"`
	DeadAngle        uint `json:"deadAngle"` // degrees of blind zone behind each boid

	Walls    bool `json:"walls"`
	Predator bool `json:"predator"`

	DebugVectors  bool `json:"debugVectors"`
	DebugControls bool `json:"debugControls"`

	// Seed feeds the pseudo-random source; 0 means time based.
	Seed uint64 `json:"seed"`

	FrameDelayMs int `json:"frameDelayMs"`

	LogLevel string `json:"logLevel"`
	LogFile  string `json:"logFile"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:       DefaultWidth,
		WorldHeight:      DefaultHeight,
		NumBoids:         DefaultNumBoids,
		Speed:            DefaultSpeed,
		Avoid:            true,
		Align:            true,
		Cohesion:         true,
		DeadAngleEnabled: false,
		AvoidDistance:    DefaultAvoidDistance,
		AlignDistance:    DefaultAlignDistance,
		CohesionDistance: DefaultCohesionDistance,
		DeadAngle:        DefaultDeadAngle,
		FrameDelayMs:     DefaultFrameDelayMs,
		LogLevel:         "info",
	}
}

// Validate reports every field Normalize would change. A nil error means the
// config is used as is.
func (c *Config) Validate() error {
	var errs []error
	if c.WorldWidth <= 0 {
		errs = append(errs, fmt.Errorf("worldWidth %d must be positive", c.WorldWidth))
	}
	if c.WorldHeight <= 0 {
		errs = append(errs, fmt.Errorf("worldHeight %d must be positive", c.WorldHeight))
	}
	if c.NumBoids < MinBoids || c.NumBoids > MaxBoids {
		errs = append(errs, fmt.Errorf("numBoids %d outside [%d, %d]", c.NumBoids, MinBoids, MaxBoids))
	}
	if math.IsNaN(c.Speed) || c.Speed < MinSpeed || c.Speed > MaxSpeed {
		errs = append(errs, fmt.Errorf("speed %g outside [%g, %g]", c.Speed, MinSpeed, MaxSpeed))
	}
	for _, d := range []struct {
		name  string
		v, hi uint
	}{
		{"avoidDistance", c.AvoidDistance, MaxAvoidDistance},
		{"alignDistance", c.AlignDistance, MaxAlignDistance},
		{"cohesionDistance", c.CohesionDistance, MaxCohesionDistance},
		{"deadAngle", c.DeadAngle, MaxDeadAngle},
	} {
		if d.v > d.hi {
			errs = append(errs, fmt.Errorf("%s %d above %d", d.name, d.v, d.hi))
		}
	}
	if c.FrameDelayMs < 0 {
		errs = append(errs, fmt.Errorf("frameDelayMs %d is negative", c.FrameDelayMs))
	}
	return errors.Join(errs...)
}

// Normalize clamps every field to the range the engine accepts, the same way
// the Swarm setters do.
func (c *Config) Normalize() {
	if c.WorldWidth <= 0 {
		c.WorldWidth = DefaultWidth
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = DefaultHeight
	}
	c.NumBoids = clampNumBoids(c.NumBoids)
	c.Speed = clampSpeed(c.Speed)
	c.AvoidDistance = clampUint(c.AvoidDistance, MinAvoidDistance, MaxAvoidDistance)
	c.AlignDistance = clampUint(c.AlignDistance, MinAlignDistance, MaxAlignDistance)
	c.CohesionDistance = clampUint(c.CohesionDistance, MinCohesionDistance, MaxCohesionDistance)
	c.DeadAngle = clampUint(c.DeadAngle, 0, MaxDeadAngle)
	if c.FrameDelayMs < 0 {
		c.FrameDelayMs = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// compileSchema compiles the embedded configuration schema.
func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, bytes.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// LoadConfig loads configuration from a JSON file and validates it against the
// embedded schema. Keys missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string) (*Config, error) {
	path, err := homedir.Expand(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig validates raw JSON against the schema and decodes it over the
// defaults. Values the schema allows but the engine clamps are kept as given;
// see Validate and Normalize.
func ParseConfig(b []byte) (*Config, error) {
	sch, err := compileSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func clampNumBoids(n int) int {
	if n < MinBoids || n > MaxBoids {
		return DefaultNumBoids
	}
	return n
}

func clampSpeed(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultSpeed
	}
	return min(max(s, MinSpeed), MaxSpeed)
}

func clampUint(v, lo, hi uint) uint {
	return min(max(v, lo), hi)
}
