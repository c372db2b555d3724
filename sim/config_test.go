package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlo-design/modsim/sim"
)

func TestDeviceConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *sim.DeviceConfig)
		wantErr bool
	}{
		{"defaults", func(c *sim.DeviceConfig) {}, false},
		{"ring", func(c *sim.DeviceConfig) { c.Topology = sim.TopologyRing }, false},
		{"phase output", func(c *sim.DeviceConfig) { c.Output = sim.OutputPhase }, false},
		{"unknown topology", func(c *sim.DeviceConfig) { c.Topology = "fabry-perot" }, true},
		{"unknown output", func(c *sim.DeviceConfig) { c.Output = "reflectance" }, true},
		{"negative insertion loss", func(c *sim.DeviceConfig) { c.InsertionLoss = -0.1 }, true},
		{"total insertion loss", func(c *sim.DeviceConfig) { c.InsertionLoss = 1 }, true},
		{"ring t above one", func(c *sim.DeviceConfig) { c.RingSelfCoupling = 1.01 }, true},
		{"ring a negative", func(c *sim.DeviceConfig) { c.RingRoundTripLoss = -0.01 }, true},
		{"knee fraction one", func(c *sim.DeviceConfig) { c.KneeFraction = 1 }, true},
		{"single point sweep", func(c *sim.DeviceConfig) { c.Sweep.Points = 1 }, true},
		{"inverted sweep", func(c *sim.DeviceConfig) { c.Sweep.MinIntensity, c.Sweep.MaxIntensity = 1e8, 1e2 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sim.DefaultDeviceConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidTopologyNames(t *testing.T) {
	assert.Equal(t, []string{"interferometer", "ring"}, sim.ValidTopologyNames())
}

func TestNewSimulator_PartialDeviceKeepsExplicitFields(t *testing.T) {
	s, err := sim.NewSimulator(sim.StaticProvider{}, sim.DeviceConfig{
		Topology:          sim.TopologyRing,
		RingSelfCoupling:  0.8,
		RingRoundTripLoss: 0.7,
		InsertionLoss:     0.2,
	})
	assert.NoError(t, err)
	dev := s.Device()
	assert.Equal(t, 0.8, dev.RingSelfCoupling)
	assert.Equal(t, 0.7, dev.RingRoundTripLoss)
	assert.Equal(t, 0.2, dev.InsertionLoss)
	assert.Equal(t, sim.DefaultSweep, dev.Sweep)
	assert.Equal(t, sim.OutputTransmission, dev.Output)
	assert.Equal(t, sim.DefaultKneeFraction, dev.KneeFraction)
}
