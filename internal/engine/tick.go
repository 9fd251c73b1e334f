package engine

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTickInterval is the wall-clock cadence of the loop. Simulated time
// advances by Speed * interval each tick.
const DefaultTickInterval = 50 * time.Millisecond

// Command runs on the loop goroutine with exclusive access to the
// simulation. It is how HTTP handlers and other goroutines mutate or read
// state without locking.
type Command func(sim *Simulation)

// Loop drives a Simulation in real time. All state access funnels through
// the loop goroutine: ticks advance it, commands are drained between ticks.
type Loop struct {
	sim      *Simulation
	interval time.Duration
	speed    float64
	log      *slog.Logger

	commands chan Command

	// OnTick fires after every advance, still on the loop goroutine. The
	// websocket hub uses it to snapshot render state.
	OnTick func(sim *Simulation)
}

func NewLoop(sim *Simulation, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		sim:      sim,
		interval: DefaultTickInterval,
		speed:    1.0,
		log:      log,
		commands: make(chan Command, 64),
	}
}

// Do enqueues fn for the loop goroutine and blocks until it has run. Safe
// to call from any goroutine.
func (l *Loop) Do(fn Command) {
	done := make(chan struct{})
	l.commands <- func(sim *Simulation) {
		fn(sim)
		close(done)
	}
	<-done
}

// SetSpeed adjusts the sim-time multiplier. 0 freezes time without touching
// the pause flag; values above 4 are clamped to keep steps inside the
// per-tick budget.
func (l *Loop) SetSpeed(mult float64) {
	l.Do(func(*Simulation) {
		if mult < 0 {
			mult = 0
		}
		if mult > 4 {
			mult = 4
		}
		l.speed = mult
	})
}

// Run blocks, ticking the simulation until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info("simulation loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.drain()
			l.log.Info("simulation loop stopped", "day", l.sim.State().Day)
			return
		case cmd := <-l.commands:
			cmd(l.sim)
		case <-ticker.C:
			l.drain()
			// Fast-forward in bounded substeps so agents never tunnel.
			for dt := l.interval.Seconds() * l.speed; dt > 0; dt -= maxStepS {
				step := dt
				if step > maxStepS {
					step = maxStepS
				}
				l.sim.Advance(step)
			}
			if l.OnTick != nil {
				l.OnTick(l.sim)
			}
		}
	}
}

// drain runs every queued command without blocking.
func (l *Loop) drain() {
	for {
		select {
		case cmd := <-l.commands:
			cmd(l.sim)
		default:
			return
		}
	}
}
