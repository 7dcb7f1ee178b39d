package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRequestFrameRunsOnce(t *testing.T) {
	s := New(epoch)
	calls := 0
	s.RequestFrame(func(time.Time) { calls++ })

	s.Tick(epoch.Add(16 * time.Millisecond))
	s.Tick(epoch.Add(32 * time.Millisecond))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Pending())
}

func TestRequestFrameDuringTickWaitsForNextTick(t *testing.T) {
	s := New(epoch)
	var seen []time.Time
	var step func(now time.Time)
	step = func(now time.Time) {
		seen = append(seen, now)
		if len(seen) < 3 {
			s.RequestFrame(step)
		}
	}
	s.RequestFrame(step)

	for i := 1; i <= 5; i++ {
		s.Tick(epoch.Add(time.Duration(i) * 16 * time.Millisecond))
	}

	assert.Len(t, seen, 3)
	assert.Equal(t, epoch.Add(48*time.Millisecond), seen[2])
}

func TestAfterFiresWhenDue(t *testing.T) {
	s := New(epoch)
	fired := false
	s.After(100*time.Millisecond, func() { fired = true })

	s.Tick(epoch.Add(99 * time.Millisecond))
	assert.False(t, fired)

	s.Tick(epoch.Add(100 * time.Millisecond))
	assert.True(t, fired)
}

func TestTimersFireInDueOrder(t *testing.T) {
	s := New(epoch)
	var order []string
	s.After(50*time.Millisecond, func() { order = append(order, "late") })
	s.After(10*time.Millisecond, func() { order = append(order, "early") })

	s.Tick(epoch.Add(time.Second))

	assert.Equal(t, []string{"early", "late"}, order)
}

func TestCancel(t *testing.T) {
	s := New(epoch)
	ran := false
	h := s.RequestFrame(func(time.Time) { ran = true })
	th := s.After(time.Millisecond, func() { ran = true })

	h.Cancel()
	th.Cancel()
	h.Cancel()
	Handle{}.Cancel()

	s.Tick(epoch.Add(time.Second))
	assert.False(t, ran)
}

func TestClockNeverMovesBackwards(t *testing.T) {
	s := New(epoch)
	s.Tick(epoch.Add(time.Second))
	s.Tick(epoch)
	assert.Equal(t, epoch.Add(time.Second), s.Now())
}

func TestCancelSiblingInSameTick(t *testing.T) {
	s := New(epoch)
	ran := false
	var second Handle
	s.RequestFrame(func(time.Time) { second.Cancel() })
	second = s.RequestFrame(func(time.Time) { ran = true })

	s.Tick(epoch.Add(16 * time.Millisecond))
	assert.False(t, ran)
}
