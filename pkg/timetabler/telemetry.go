package timetabler

import (
	"context"
	"runtime"
	"sync"
	"time"
)

const telemetryInterval = time.Second

// Event is a periodic progress snapshot. Elapsed excludes paused time.
type Event struct {
	Elapsed    time.Duration
	PeakMemory uint64  // Bytes obtained from the OS
	PeakCPU    float64 // Percentage of one core
	Objective  int64   // Best objective so far, -1 before the first solution
	Solutions  int
	Status     Status
	Final      bool
}

type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(event Event) {
	f(event)
}

// clock measures elapsed time excluding pauses.
type clock struct {
	mutex    sync.Mutex
	start    time.Time
	paused   time.Duration
	pausedAt time.Time
	now      func() time.Time
}

func newClock(now func() time.Time) *clock {
	return &clock{start: now(), now: now}
}

func (c *clock) Pause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.pausedAt.IsZero() {
		c.pausedAt = c.now()
	}
}

func (c *clock) Resume() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.pausedAt.IsZero() {
		c.paused += c.now().Sub(c.pausedAt)
		c.pausedAt = time.Time{}
	}
}

func (c *clock) Elapsed() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	now := c.now()
	if !c.pausedAt.IsZero() {
		now = c.pausedAt
	}
	return now.Sub(c.start) - c.paused
}

// progress is shared between the search loop and the telemetry poller.
type progress struct {
	mutex     sync.Mutex
	objective int64
	solutions int
	status    Status
}

func (p *progress) record(objective int64, solutions int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.objective, p.solutions = objective, solutions
}

func (p *progress) setStatus(status Status) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.status = status
}

func (p *progress) snapshot() (int64, int, Status) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.objective, p.solutions, p.status
}

type telemetry struct {
	observer Observer
	clock    *clock
	progress *progress

	peakMemory uint64
	peakCPU    float64
	lastCPU    time.Duration
	lastWall   time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// startTelemetry emits an event every interval until stop is called. A nil
// observer disables it.
func startTelemetry(ctx context.Context, observer Observer, clock *clock, progress *progress) *telemetry {
	t := &telemetry{
		observer: observer,
		clock:    clock,
		progress: progress,
		lastCPU:  processCPUTime(),
		lastWall: time.Now(),
		done:     make(chan struct{}),
	}
	if observer == nil {
		close(t.done)
		return t
	}

	ctx, t.cancel = context.WithCancel(ctx)
	go func() {
		defer close(t.done)
		ticker := time.NewTicker(telemetryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.emit(false)
			}
		}
	}()
	return t
}

// stop ends the poller and sends the final event.
func (t *telemetry) stop() {
	if t.observer == nil {
		return
	}
	t.cancel()
	<-t.done
	t.emit(true)
}

func (t *telemetry) emit(final bool) {
	t.sample()
	objective, solutions, status := t.progress.snapshot()
	t.observer.Observe(Event{
		Elapsed:    t.clock.Elapsed(),
		PeakMemory: t.peakMemory,
		PeakCPU:    t.peakCPU,
		Objective:  objective,
		Solutions:  solutions,
		Status:     status,
		Final:      final,
	})
}

func (t *telemetry) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	t.peakMemory = max(t.peakMemory, memStats.Sys)

	cpu, wall := processCPUTime(), time.Now()
	if elapsed := wall.Sub(t.lastWall); elapsed > 0 {
		t.peakCPU = max(t.peakCPU, 100*float64(cpu-t.lastCPU)/float64(elapsed))
	}
	t.lastCPU, t.lastWall = cpu, wall
}
