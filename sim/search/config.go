package search

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nlo-design/modsim/sim"
)

// Config holds a search run's configuration, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML": they leave the defaults (or CLI
// flags) untouched. String fields use the empty string for "not set".
type Config struct {
	Search SearchConfig `yaml:"search"`
	Space  SpaceConfig  `yaml:"space"`
	Device DeviceConfig `yaml:"device"`
}

// SearchConfig holds optimizer settings.
type SearchConfig struct {
	Trials          *int     `yaml:"trials"`
	Seed            *int64   `yaml:"seed"`
	Workers         *int     `yaml:"workers"`
	ExploreFraction *float64 `yaml:"explore_fraction"`
	RoundSize       *int     `yaml:"round_size"`
}

// SpaceConfig overrides dimensions of the default space.
type SpaceConfig struct {
	Materials []string    `yaml:"materials"`
	Layers    *IntRange   `yaml:"layers"`
	LambdaNM  *IntRange   `yaml:"lambda_nm"`
	Q         *FloatRange `yaml:"q"`
	Gamma     *FloatRange `yaml:"gamma"`
	LIntUM    *float64    `yaml:"l_int_um"`
}

// DeviceConfig overrides the simulated device.
type DeviceConfig struct {
	Topology          string   `yaml:"topology"`
	InsertionLoss     *float64 `yaml:"insertion_loss"`
	RingSelfCoupling  *float64 `yaml:"ring_self_coupling"`
	RingRoundTripLoss *float64 `yaml:"ring_round_trip_loss"`
}

// LoadConfig reads and parses a YAML search configuration file.
// Unknown keys are rejected so typos cannot silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading search config: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing search config: %w", err)
	}
	return &cfg, nil
}

// ApplyOptions overlays the set fields onto opts.
func (c *Config) ApplyOptions(opts Options) Options {
	s := c.Search
	if s.Trials != nil {
		opts.Trials = *s.Trials
	}
	if s.Seed != nil {
		opts.Seed = *s.Seed
	}
	if s.Workers != nil {
		opts.Workers = *s.Workers
	}
	if s.ExploreFraction != nil {
		opts.ExploreFraction = *s.ExploreFraction
	}
	if s.RoundSize != nil {
		opts.RoundSize = *s.RoundSize
	}
	return opts
}

// ApplySpace overlays the set fields onto space.
func (c *Config) ApplySpace(space Space) Space {
	s := c.Space
	if len(s.Materials) > 0 {
		space.Materials = space.Materials[:0:0]
		for _, m := range s.Materials {
			space.Materials = append(space.Materials, sim.MaterialID(m))
		}
	}
	if s.Layers != nil {
		space.Layers = *s.Layers
	}
	if s.LambdaNM != nil {
		space.LambdaNM = *s.LambdaNM
	}
	if s.Q != nil {
		space.Q = *s.Q
	}
	if s.Gamma != nil {
		space.Gamma = *s.Gamma
	}
	if s.LIntUM != nil {
		space.LIntUM = *s.LIntUM
	}
	return space
}

// ApplyDevice overlays the set fields onto dev.
func (c *Config) ApplyDevice(dev sim.DeviceConfig) sim.DeviceConfig {
	d := c.Device
	if d.Topology != "" {
		dev.Topology = sim.Topology(d.Topology)
	}
	if d.InsertionLoss != nil {
		dev.InsertionLoss = *d.InsertionLoss
	}
	if d.RingSelfCoupling != nil {
		dev.RingSelfCoupling = *d.RingSelfCoupling
	}
	if d.RingRoundTripLoss != nil {
		dev.RingRoundTripLoss = *d.RingRoundTripLoss
	}
	return dev
}
