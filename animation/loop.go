package animation

import "time"

// Loop is a repeating task that reschedules itself on every repaint.
//
// Stop only clears a flag. A callback already queued with the scheduler still
// fires once after Stop; it sees the flag, does no work and does not
// reschedule.
type Loop struct {
	sched   Scheduler
	step    func(now time.Duration)
	running bool
	stopped bool
}

func NewLoop(sched Scheduler, step func(now time.Duration)) *Loop {
	return &Loop{sched: sched, step: step}
}

// Start queues the first invocation. A stopped loop cannot be restarted.
func (l *Loop) Start() {
	if l.running || l.stopped {
		return
	}
	l.running = true
	l.sched.RequestFrame(l.tick)
}

func (l *Loop) Stop() {
	l.running = false
	l.stopped = true
}

func (l *Loop) Running() bool {
	return l.running
}

func (l *Loop) tick(now time.Duration) {
	if !l.running {
		return
	}
	l.step(now)
	if l.running {
		l.sched.RequestFrame(l.tick)
	}
}
