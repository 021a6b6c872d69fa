// Package animation schedules per-repaint callbacks on a single thread.
package animation

import "time"

// Callback is invoked with the repaint timestamp it was flushed at.
type Callback func(now time.Duration)

// Scheduler queues callbacks to run before the next repaint.
type Scheduler interface {
	RequestFrame(cb Callback)
	Now() time.Duration
}

// Queue is a repaint-synchronised callback queue. Callbacks requested while a
// flush is in progress run on the following flush, never the current one.
type Queue struct {
	clock   func() time.Duration
	pending []Callback
}

func NewQueue(clock func() time.Duration) *Queue {
	return &Queue{clock: clock}
}

func (q *Queue) RequestFrame(cb Callback) {
	q.pending = append(q.pending, cb)
}

// Now returns the queue's clock reading.
func (q *Queue) Now() time.Duration {
	if q.clock == nil {
		return 0
	}
	return q.clock()
}

// Len reports the number of callbacks waiting for the next flush.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Flush runs every callback queued before the call with the given timestamp
// and returns how many ran.
func (q *Queue) Flush(now time.Duration) int {
	batch := q.pending
	q.pending = nil
	for _, cb := range batch {
		cb(now)
	}
	return len(batch)
}

// ManualClock is a clock advanced explicitly, used for offline rendering.
type ManualClock struct {
	now time.Duration
}

func (c *ManualClock) Now() time.Duration { return c.now }

func (c *ManualClock) Set(now time.Duration) { c.now = now }

func (c *ManualClock) Advance(d time.Duration) time.Duration {
	c.now += d
	return c.now
}
