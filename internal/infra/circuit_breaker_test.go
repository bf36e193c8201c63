package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSend = errors.New("smtp down")

func newTestBreaker(clock *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(BreakerSettings{
		Name:             "smtp",
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := time.Unix(0, 0)
	cb := newTestBreaker(&clock)

	assert.ErrorIs(t, cb.Execute(func() error { return errSend }), errSend)
	assert.Equal(t, BreakerClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return errSend }), errSend)
	assert.Equal(t, BreakerOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenProbeCloses(t *testing.T) {
	clock := time.Unix(0, 0)
	cb := newTestBreaker(&clock)
	_ = cb.Execute(func() error { return errSend })
	_ = cb.Execute(func() error { return errSend })
	require.Equal(t, BreakerOpen, cb.State())

	clock = clock.Add(time.Minute)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	snap := cb.Snapshot()
	assert.Equal(t, "closed", snap.State)
	assert.Equal(t, 0, snap.Failures)
	assert.Equal(t, "smtp", snap.Name)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := time.Unix(0, 0)
	cb := newTestBreaker(&clock)
	_ = cb.Execute(func() error { return errSend })
	_ = cb.Execute(func() error { return errSend })
	clock = clock.Add(2 * time.Minute)

	assert.ErrorIs(t, cb.Execute(func() error { return errSend }), errSend)
	assert.Equal(t, BreakerOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	clock := time.Unix(0, 0)
	cb := newTestBreaker(&clock)
	_ = cb.Execute(func() error { return errSend })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errSend })
	assert.Equal(t, BreakerClosed, cb.State())
}
