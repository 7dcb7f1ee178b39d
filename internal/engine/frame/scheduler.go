// Package frame provides the cooperative clock that drives per-frame callbacks
// and short timers on the render thread.
//
// Nothing here is safe for concurrent use: callbacks run inside Tick, on the
// same goroutine that delivers input events.
package frame

import (
	"sort"
	"time"
)

// Scheduler queues one-shot frame callbacks and timers and runs them from Tick.
type Scheduler struct {
	now    time.Time
	nextID uint64
	frames []frameTask
	timers []timerTask

	// ids taken off the queues by the running Tick; Cancel clears them so a
	// callback can still cancel a sibling that is due in the same Tick.
	firing map[uint64]bool
}

type frameTask struct {
	id uint64
	fn func(now time.Time)
}

type timerTask struct {
	id  uint64
	due time.Time
	fn  func()
}

// Handle identifies a scheduled callback so it can be cancelled.
type Handle struct {
	id uint64
	s  *Scheduler
}

// New creates a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start, firing: make(map[uint64]bool)}
}

// Now returns the time of the most recent Tick.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// RequestFrame schedules fn to run once on the next Tick.
// Callbacks requested while a Tick is running wait for the following Tick.
func (s *Scheduler) RequestFrame(fn func(now time.Time)) Handle {
	s.nextID++
	s.frames = append(s.frames, frameTask{id: s.nextID, fn: fn})
	return Handle{id: s.nextID, s: s}
}

// After schedules fn to run on the first Tick at or after Now()+d.
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	s.nextID++
	s.timers = append(s.timers, timerTask{id: s.nextID, due: s.now.Add(d), fn: fn})
	return Handle{id: s.nextID, s: s}
}

// Pending returns the number of queued frame callbacks and timers.
func (s *Scheduler) Pending() int {
	return len(s.frames) + len(s.timers)
}

// Tick advances the clock to now, fires due timers in due order, then runs
// the frame callbacks that were queued before this Tick.
func (s *Scheduler) Tick(now time.Time) {
	if now.After(s.now) {
		s.now = now
	}

	var due []timerTask
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.due.After(s.now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	s.timers = kept
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })

	frames := s.frames
	s.frames = nil

	for _, t := range due {
		s.firing[t.id] = true
	}
	for _, f := range frames {
		s.firing[f.id] = true
	}

	for _, t := range due {
		if s.firing[t.id] {
			delete(s.firing, t.id)
			t.fn()
		}
	}
	for _, f := range frames {
		if s.firing[f.id] {
			delete(s.firing, f.id)
			f.fn(s.now)
		}
	}
}

// Cancel removes the callback if it has not run yet. Cancelling twice, or
// cancelling a zero Handle, is a no-op.
func (h Handle) Cancel() {
	if h.s == nil {
		return
	}
	delete(h.s.firing, h.id)
	for i, f := range h.s.frames {
		if f.id == h.id {
			h.s.frames = append(h.s.frames[:i], h.s.frames[i+1:]...)
			return
		}
	}
	for i, t := range h.s.timers {
		if t.id == h.id {
			h.s.timers = append(h.s.timers[:i], h.s.timers[i+1:]...)
			return
		}
	}
}
