package publish

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itohio/lpsense/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	samples []sample.Sample
	err     error
	closed  int
}

func (r *recorder) Publish(_ context.Context, s sample.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.samples = append(r.samples, s)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func testSample() sample.Sample {
	return sample.Sample{
		Timestamp:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Temperature:      25.5,
		TemperatureValid: true,
		Light:            38,
		Indicator:        true,
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(testSample())
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2024-05-01T12:00:00Z","temperature":25.5,"light":38,"indicator":true}`, string(data))
}

func TestEncode_InvalidTemperature(t *testing.T) {
	s := testSample()
	s.TemperatureValid = false
	s.Temperature = 0

	data, err := Encode(s)
	require.NoError(t, err)

	var p map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &p))
	assert.NotContains(t, p, "temperature")
	assert.Equal(t, float64(38), p["light"])
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	p := Multi(a, nil, b)

	require.NoError(t, p.Publish(context.Background(), testSample()))
	assert.Len(t, a.samples, 1)
	assert.Len(t, b.samples, 1)

	require.NoError(t, p.Close())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
}

func TestMulti_FailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("boom")
	a, b := &recorder{err: boom}, &recorder{}
	p := Multi(a, b)

	err := p.Publish(context.Background(), testSample())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, b.samples, 1)
}

func TestMulti_Empty(t *testing.T) {
	p := Multi()
	assert.NoError(t, p.Publish(context.Background(), testSample()))
	assert.NoError(t, p.Close())
}
