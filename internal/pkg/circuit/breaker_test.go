package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker("test", 3, time.Hour)
	assert.True(t, b.Allow())

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)
	b.RecordFailure()
	assert.False(t, b.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow(), "cooldown elapsed, probe should pass")
	assert.Equal(t, StateHalfOpen, b.State())

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReopensOnProbeFailure(t *testing.T) {
	b := NewBreaker("test", 1, 5*time.Millisecond)
	b.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := NewBreaker("test", 2, time.Hour)
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State(), "non-consecutive failures stay closed")
}
