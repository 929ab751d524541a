package sampler

import (
	"errors"
	"sync"
	"testing"

	"github.com/itohio/lpsense/pkg/acq"
	"github.com/itohio/lpsense/pkg/filter"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/itohio/lpsense/pkg/sar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type led struct {
	mu     sync.Mutex
	on     bool
	writes int
}

func (l *led) Set(on bool) {
	l.mu.Lock()
	l.on = on
	l.writes++
	l.mu.Unlock()
}

func (l *led) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

type reports struct {
	mu      sync.Mutex
	samples []sample.Sample
	err     error
}

func (r *reports) Report(s sample.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
	return r.err
}

func (r *reports) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

type harness struct {
	fifo    *sar.FIFO
	bridge  *acq.Bridge
	led     *led
	reports *reports
	loop    *Loop
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bank, err := filter.NewBank(filter.DefaultConfig())
	require.NoError(t, err)

	h := &harness{
		fifo:    sar.NewFIFO(sar.DefaultFIFODepth, 120),
		led:     &led{},
		reports: &reports{},
	}
	h.bridge = acq.New(bank, sar.NewSignal(), sample.DefaultLightConfig())
	h.fifo.SetLevelHandler(h.bridge.OnWatermark)
	h.loop = New(DefaultConfig(), sample.DefaultThermistorConfig(), sample.DefaultLightConfig(), h.bridge, h.fifo, h.led, h.reports)
	return h
}

// fill pushes n scans in REFERENCE, THERMISTOR, LIGHT order.
func (h *harness) fill(t *testing.T, n int, ref, therm, light uint16) {
	t.Helper()
	for range n {
		require.NoError(t, h.fifo.Push(sar.RawSample{Channel: sar.Reference, Value: ref}))
		require.NoError(t, h.fifo.Push(sar.RawSample{Channel: sar.Thermistor, Value: therm}))
		require.NoError(t, h.fifo.Push(sar.RawSample{Channel: sar.Light, Value: light}))
	}
}

func TestStep_EndToEnd(t *testing.T) {
	h := newHarness(t)
	h.fill(t, 40, 2048, 2048, 600)

	processed, err := h.loop.Step()
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, 0, h.fifo.Count())

	s := h.loop.Last()
	assert.True(t, s.TemperatureValid)
	assert.InDelta(t, 25.0, s.Temperature, 0.05)
	assert.Equal(t, uint8(38), s.Light)
	assert.True(t, s.Indicator)
	assert.True(t, h.led.On())
	assert.Equal(t, int32(2048), s.Reference)
	assert.Equal(t, int32(2048), s.Thermistor)
	assert.Equal(t, int32(600), s.LightCount)
	assert.Equal(t, Sleeping, h.loop.State())
}

func TestStep_WithoutSignal(t *testing.T) {
	h := newHarness(t)
	h.fill(t, 10, 2048, 2048, 600) // below the watermark

	processed, err := h.loop.Step()
	require.NoError(t, err)
	assert.False(t, processed)
	assert.Equal(t, 30, h.fifo.Count())
	assert.Equal(t, uint64(0), h.loop.Cycles())
	assert.Equal(t, 0, h.led.writes)

	// A wake-up that is not the FIFO interrupt is ignored as well.
	h.bridge.Signal().Wake()
	processed, err = h.loop.Step()
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestStep_ReportCadence(t *testing.T) {
	h := newHarness(t)

	for cycle := 1; cycle <= 23; cycle++ {
		h.fill(t, 40, 2048, 2048, 600)
		processed, err := h.loop.Step()
		require.NoError(t, err)
		require.True(t, processed)

		assert.Equal(t, cycle/5, h.reports.Len(), "cycle %d", cycle)
	}
	assert.Equal(t, uint64(23), h.loop.Cycles())
	assert.Equal(t, uint64(4), h.loop.Reports())
}

func TestStep_ReportFailureDoesNotStop(t *testing.T) {
	h := newHarness(t)
	h.reports.err = errors.New("uart busy")

	for range 10 {
		h.fill(t, 40, 2048, 2048, 600)
		_, err := h.loop.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, h.reports.Len())
}

func TestStep_IndicatorHysteresis(t *testing.T) {
	light := sample.DefaultLightConfig()
	h := newHarness(t)
	h.fill(t, 40, 2048, 2048, uint16(sample.CountsForLight(30, light)))
	_, err := h.loop.Step()
	require.NoError(t, err)
	require.True(t, h.loop.Indicator())

	// Light filter is slow; keep feeding until the percentage settles.
	settle := func(percent int) uint8 {
		for range 30 {
			h.fill(t, 40, 2048, 2048, uint16(sample.CountsForLight(percent, light)))
			_, err := h.loop.Step()
			require.NoError(t, err)
		}
		return h.loop.Last().Light
	}

	assert.InDelta(t, 50, settle(50), 1)
	assert.True(t, h.loop.Indicator(), "inside the band the state holds")

	assert.InDelta(t, 70, settle(70), 1)
	assert.False(t, h.loop.Indicator())
	assert.False(t, h.led.On())

	assert.InDelta(t, 50, settle(50), 1)
	assert.False(t, h.loop.Indicator(), "inside the band the state holds")

	assert.InDelta(t, 20, settle(20), 1)
	assert.True(t, h.loop.Indicator())
	assert.True(t, h.led.On())
}

func TestStep_DarkFirstSample(t *testing.T) {
	h := newHarness(t)
	h.fill(t, 40, 2048, 2048, sar.DarkRaw)

	_, err := h.loop.Step()
	require.NoError(t, err)
	s := h.loop.Last()
	assert.Equal(t, uint8(0), s.Light)
	assert.True(t, s.Indicator)
}

func TestStep_ChannelFault(t *testing.T) {
	h := newHarness(t)
	h.fill(t, 39, 2048, 2048, 600)
	require.NoError(t, h.fifo.Push(sar.RawSample{Channel: 5, Value: 1}))
	require.NoError(t, h.fifo.Push(sar.RawSample{Channel: sar.Thermistor, Value: 1}))
	require.NoError(t, h.fifo.Push(sar.RawSample{Channel: sar.Light, Value: 1}))

	processed, err := h.loop.Step()
	assert.True(t, processed)
	assert.ErrorIs(t, err, acq.ErrChannelRange)
	assert.Equal(t, uint64(0), h.loop.Cycles())
	assert.Equal(t, Sleeping, h.loop.State())
}

func TestStep_TemperatureFault(t *testing.T) {
	h := newHarness(t)
	h.fill(t, 40, 0, 2048, 600)

	processed, err := h.loop.Step()
	require.NoError(t, err)
	assert.True(t, processed)

	s := h.loop.Last()
	assert.False(t, s.TemperatureValid)
	assert.Equal(t, uint8(38), s.Light)
}

func TestOnUpdate(t *testing.T) {
	h := newHarness(t)
	var got []sample.Sample
	h.loop.OnUpdate(func(s sample.Sample) {
		got = append(got, s)
	})

	for range 3 {
		h.fill(t, 40, 2048, 2048, 600)
		_, err := h.loop.Step()
		require.NoError(t, err)
	}
	require.Len(t, got, 3)
	assert.Equal(t, h.loop.Last(), got[2])
}

func TestNew_Defaults(t *testing.T) {
	h := newHarness(t)
	l := New(Config{}, sample.DefaultThermistorConfig(), sample.DefaultLightConfig(), h.bridge, h.fifo, nil, nil)
	assert.Equal(t, 5, l.cfg.ReportEvery)

	h.fill(t, 40, 2048, 2048, 600)
	_, err := l.Step()
	require.NoError(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "sleeping", Sleeping.String())
	assert.Equal(t, "processing", Processing.String())
}
