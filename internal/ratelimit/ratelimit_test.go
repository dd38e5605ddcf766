package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAllow_BurstThenRefill(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newLimiter(1, 2, clock.Now)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// Keys are independent.
	assert.True(t, l.Allow("10.0.0.2"))

	clock.Advance(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestSweep_EvictsIdleKeys(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newLimiter(10, 10, clock.Now)

	l.Allow("old")
	clock.Advance(DefaultIdleTTL / 2)
	l.Allow("recent")
	clock.Advance(DefaultIdleTTL/2 + time.Second)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
}

func TestStop_Idempotent(t *testing.T) {
	l := New(1, 1)
	assert.NotPanics(t, func() {
		l.Stop()
		l.Stop()
	})
}
