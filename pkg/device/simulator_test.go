package device

import (
	"testing"
	"time"

	"github.com/itohio/lpsense/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Acquisition.TriggerInterval = 100 * time.Microsecond
	cfg.Mock.Temperature = 30
	cfg.Mock.Light = 20
	return cfg
}

func TestSimulator_Reports(t *testing.T) {
	sim := NewSimulator(fastConfig(), 0)
	require.NoError(t, sim.Connect())
	defer sim.Close()

	assert.True(t, sim.IsConnected())
	assert.ErrorIs(t, sim.Connect(), ErrConnected)

	select {
	case s := <-sim.Samples():
		assert.True(t, s.TemperatureValid)
		assert.InDelta(t, 30.0, s.Temperature, 0.5)
		assert.True(t, s.Indicator)
	case <-time.After(5 * time.Second):
		t.Fatal("no report from simulator")
	}
	assert.GreaterOrEqual(t, sim.Cycles(), uint64(4))
}

func TestSimulator_SceneChanges(t *testing.T) {
	sim := NewSimulator(fastConfig(), 0)
	assert.ErrorIs(t, sim.SetLight(90), ErrNotConnected)
	assert.ErrorIs(t, sim.SetTemperature(10), ErrNotConnected)

	require.NoError(t, sim.Connect())
	defer sim.Close()

	require.NoError(t, sim.SetTemperature(10))
	require.NoError(t, sim.SetLight(90))

	require.Eventually(t, func() bool {
		select {
		case s := <-sim.Samples():
			return s.Light >= 88 && !s.Indicator && s.Temperature < 11
		default:
			return false
		}
	}, 10*time.Second, time.Millisecond)
}
