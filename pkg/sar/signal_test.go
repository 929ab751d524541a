package sar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_TakeClears(t *testing.T) {
	s := NewSignal()
	assert.False(t, s.Take())

	s.Raise()
	assert.True(t, s.Raised())
	assert.True(t, s.Take())
	assert.False(t, s.Take())
}

func TestSignal_AtMostOnePending(t *testing.T) {
	s := NewSignal()
	s.Raise()
	s.Raise()
	s.Raise()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Wait(ctx))
	assert.True(t, s.Take())

	// Only one wake-up was queued.
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)
	assert.False(t, s.Take())
}

func TestSignal_WakeWithoutFlag(t *testing.T) {
	s := NewSignal()
	s.Wake()

	require.NoError(t, s.Wait(context.Background()))
	assert.False(t, s.Take())
}

func TestSignal_WaitBlocksUntilRaise(t *testing.T) {
	s := NewSignal()
	done := make(chan error, 1)
	go func() {
		done <- s.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Raise")
	case <-time.After(20 * time.Millisecond):
	}

	s.Raise()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Raise")
	}
	assert.True(t, s.Take())
}

func TestConfig_WakePeriod(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, DefaultConfig().WakePeriod())
	assert.Equal(t, time.Duration(0), Config{TriggerInterval: time.Millisecond}.WakePeriod())
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "reference", Reference.String())
	assert.Equal(t, "thermistor", Thermistor.String())
	assert.Equal(t, "light", Light.String())
	assert.Equal(t, "invalid", Channel(3).String())
	assert.True(t, Light.Valid())
	assert.False(t, Channel(3).Valid())
}
