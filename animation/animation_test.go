package animation

import (
	"testing"
	"time"
)

func TestQueueFlushRunsOnlyQueuedCallbacks(t *testing.T) {
	q := NewQueue(nil)
	var got []time.Duration
	var reschedule Callback
	reschedule = func(now time.Duration) {
		got = append(got, now)
		q.RequestFrame(reschedule)
	}
	q.RequestFrame(reschedule)

	if n := q.Flush(10 * time.Millisecond); n != 1 {
		t.Fatalf("Flush() ran %d callbacks, want 1", n)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d after flush, want 1 rescheduled callback", q.Len())
	}
	q.Flush(20 * time.Millisecond)

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d at %v, want %v", i, got[i], want[i])
		}
	}
}

func TestQueueNowUsesClock(t *testing.T) {
	clock := &ManualClock{}
	q := NewQueue(clock.Now)
	clock.Advance(250 * time.Millisecond)
	if q.Now() != 250*time.Millisecond {
		t.Errorf("Now() = %v, want 250ms", q.Now())
	}
	if NewQueue(nil).Now() != 0 {
		t.Error("Now() without a clock should be 0")
	}
}

func TestLoopRunsEveryFlush(t *testing.T) {
	q := NewQueue(nil)
	steps := 0
	l := NewLoop(q, func(time.Duration) { steps++ })
	l.Start()
	l.Start()
	if q.Len() != 1 {
		t.Fatalf("double Start queued %d callbacks, want 1", q.Len())
	}
	for i := 0; i < 5; i++ {
		q.Flush(time.Duration(i) * time.Millisecond)
	}
	if steps != 5 {
		t.Errorf("steps = %d, want 5", steps)
	}
}

func TestLoopStopLeavesOneNoopInvocation(t *testing.T) {
	q := NewQueue(nil)
	steps := 0
	l := NewLoop(q, func(time.Duration) { steps++ })
	l.Start()
	q.Flush(0)
	l.Stop()

	if q.Len() != 1 {
		t.Fatalf("pending callbacks = %d, want the one already queued", q.Len())
	}
	q.Flush(time.Millisecond)
	if steps != 1 {
		t.Errorf("steps = %d after stop, want 1", steps)
	}
	if q.Len() != 0 {
		t.Errorf("stopped loop rescheduled itself")
	}

	l.Start()
	if l.Running() || q.Len() != 0 {
		t.Error("stopped loop must not restart")
	}
}

func TestLoopStopFromInsideStep(t *testing.T) {
	q := NewQueue(nil)
	var l *Loop
	l = NewLoop(q, func(time.Duration) { l.Stop() })
	l.Start()
	q.Flush(0)
	if q.Len() != 0 {
		t.Error("loop stopped during its step must not reschedule")
	}
}
