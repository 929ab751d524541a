package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itohio/lpsense/pkg/config"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithBreaker_Trips(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{err: boom}
	p := WithBreaker("test", rec, config.BreakerConfig{Failures: 3, Open: time.Hour})
	b := p.(*breaker)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, p.Publish(context.Background(), testSample()), boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.state())

	rec.err = nil
	assert.ErrorIs(t, p.Publish(context.Background(), testSample()), gobreaker.ErrOpenState)
	assert.Empty(t, rec.samples)
}

func TestWithBreaker_Recovers(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{err: boom}
	p := WithBreaker("test", rec, config.BreakerConfig{Failures: 1, Open: 10 * time.Millisecond})
	b := p.(*breaker)

	assert.Error(t, p.Publish(context.Background(), testSample()))
	assert.Equal(t, gobreaker.StateOpen, b.state())

	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	require.Eventually(t, func() bool {
		return p.Publish(context.Background(), testSample()) == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, gobreaker.StateClosed, b.state())
}

func TestWithBreaker_Close(t *testing.T) {
	rec := &recorder{}
	p := WithBreaker("test", rec, config.BreakerConfig{})
	require.NoError(t, p.Close())
	assert.Equal(t, 1, rec.closed)
}
