// Package materials provides the material-property store consumed by the
// simulator: a Catalog loaded from YAML (an embedded default ships with the
// binary) that implements sim.PropertyProvider.
package materials

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/nlo-design/modsim/sim"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// File is the on-disk catalog layout.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type File struct {
	Version   string         `yaml:"version"`
	Materials []MaterialSpec `yaml:"materials"`
}

// MaterialSpec is one material entry in the catalog file.
type MaterialSpec struct {
	ID                string     `yaml:"id"`
	Sourcing          string     `yaml:"sourcing"`
	Effects           []string   `yaml:"effects"`
	LayerThicknessNM  float64    `yaml:"layer_thickness_nm"`
	ResponseTimeS     *float64   `yaml:"response_time_s,omitempty"`
	SaturableFraction *float64   `yaml:"saturable_fraction,omitempty"`
	Dispersion        *float64   `yaml:"dispersion_s2_m,omitempty"`
	Anisotropy        *float64   `yaml:"anisotropy,omitempty"`
	Spectra           []BandSpec `yaml:"spectra"`
}

// BandSpec assigns constant optical constants to every integer wavelength in
// [FromNM, ToNM]. Bands of one material must not overlap.
type BandSpec struct {
	FromNM  int     `yaml:"from_nm"`
	ToNM    int     `yaml:"to_nm"`
	N       float64 `yaml:"n"`
	K       float64 `yaml:"k"`
	N2      float64 `yaml:"n2"`
	IsatWM2 float64 `yaml:"isat_w_m2"`
}

// Catalog is an immutable set of material records. Records returned by
// Lookup share storage with the catalog and must not be modified.
type Catalog struct {
	order   []sim.MaterialID
	records map[sim.MaterialID]sim.MaterialProperties
}

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which is a build defect.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("materials: embedded catalog: %v", err))
	}
	return c
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading material catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("material catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog YAML with strict field checking and validates every
// record.
func Parse(data []byte) (*Catalog, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing material catalog: %w", err)
	}
	return New(f.Materials...)
}

// New builds a catalog from specs. Duplicate IDs and invalid records are errors.
func New(specs ...MaterialSpec) (*Catalog, error) {
	c := &Catalog{records: make(map[sim.MaterialID]sim.MaterialProperties, len(specs))}
	for _, spec := range specs {
		props, err := spec.Properties()
		if err != nil {
			return nil, err
		}
		if _, dup := c.records[props.ID]; dup {
			return nil, fmt.Errorf("duplicate material %q", props.ID)
		}
		if len(props.ActiveEffects) == 0 {
			logrus.Warnf("material %s declares no active effects; its response is constant", props.ID)
		}
		c.records[props.ID] = props
		c.order = append(c.order, props.ID)
	}
	return c, nil
}

// Properties expands the spec into a validated sim.MaterialProperties.
func (s MaterialSpec) Properties() (sim.MaterialProperties, error) {
	props := sim.MaterialProperties{
		ID:                  sim.MaterialID(s.ID),
		Sourcing:            sim.Sourcing(s.Sourcing),
		LayerThicknessNM:    s.LayerThicknessNM,
		RefractiveIndex:     map[int]float64{},
		Extinction:          map[int]float64{},
		NonlinearIndex:      map[int]float64{},
		SaturationIntensity: map[int]float64{},
		ResponseTime:        s.ResponseTimeS,
		SaturableFraction:   s.SaturableFraction,
		Dispersion:          s.Dispersion,
		Anisotropy:          s.Anisotropy,
	}
	for _, e := range s.Effects {
		props.ActiveEffects = append(props.ActiveEffects, sim.EffectTag(e))
	}
	for _, b := range s.Spectra {
		if b.ToNM < b.FromNM || b.FromNM <= 0 {
			return sim.MaterialProperties{}, fmt.Errorf("material %s: invalid band [%d, %d]", s.ID, b.FromNM, b.ToNM)
		}
		for nm := b.FromNM; nm <= b.ToNM; nm++ {
			if _, dup := props.RefractiveIndex[nm]; dup {
				return sim.MaterialProperties{}, fmt.Errorf("material %s: bands overlap at %dnm", s.ID, nm)
			}
			props.RefractiveIndex[nm] = b.N
			props.Extinction[nm] = b.K
			props.NonlinearIndex[nm] = b.N2
			props.SaturationIntensity[nm] = b.IsatWM2
		}
	}
	if err := props.Validate(); err != nil {
		return sim.MaterialProperties{}, err
	}
	return props, nil
}

// Lookup implements sim.PropertyProvider.
func (c *Catalog) Lookup(id sim.MaterialID) (sim.MaterialProperties, bool) {
	p, ok := c.records[id]
	return p, ok
}

// IDs returns material IDs in catalog order.
func (c *Catalog) IDs() []sim.MaterialID {
	return append([]sim.MaterialID(nil), c.order...)
}

// BySourcing returns the sorted IDs of materials with the given sourcing.
func (c *Catalog) BySourcing(s sim.Sourcing) []sim.MaterialID {
	var out []sim.MaterialID
	for _, id := range c.order {
		if c.records[id].Sourcing == s {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of materials.
func (c *Catalog) Len() int { return len(c.order) }
