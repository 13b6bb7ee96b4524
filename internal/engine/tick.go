// Package engine provides the tick-based simulation loop and the Simulation
// aggregate that runs the fleet systems each tick.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/fleetcommand/internal/simtime"
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Interval time.Duration // Base tick interval (default 1 second)

	// Callbacks for each tick layer, populated during setup.
	OnTick func(clock simtime.Clock) // Every tick (sim-minute)
	OnHour func(clock simtime.Clock) // Every 60 ticks
	OnDay  func(clock simtime.Clock) // Every 1440 ticks
	OnWeek func(clock simtime.Clock) // Every 10080 ticks

	mu      sync.Mutex
	speed   float64 // Multiplier: 1.0 = real-time
	paused  bool
	mode    simtime.Mode
	running bool
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval: time.Second,
		speed:    1.0,
	}
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed())

	for e.Running() {
		speed, paused := e.state()
		if paused || speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Advance runs n ticks back to back without sleeping. A paused engine still
// delivers paused clocks so callers can observe that nothing changed.
func (e *Engine) Advance(n uint64) {
	for i := uint64(0); i < n; i++ {
		e.step()
	}
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Values at or below zero stall the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
}

// SetPaused pauses or resumes the simulation.
func (e *Engine) SetPaused(paused bool) {
	e.mu.Lock()
	e.paused = paused
	e.mu.Unlock()
}

// SetMode switches between recording and playback.
func (e *Engine) SetMode(m simtime.Mode) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
}

// Clock returns the clock for the current tick.
func (e *Engine) Clock() simtime.Clock {
	e.mu.Lock()
	defer e.mu.Unlock()
	return simtime.Clock{Tick: e.Tick, Paused: e.paused, Mode: e.mode}
}

func (e *Engine) state() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed, e.paused
}

// step advances the simulation by one tick. A paused clock does not move time.
func (e *Engine) step() {
	e.mu.Lock()
	if !e.paused {
		e.Tick++
	}
	clock := simtime.Clock{Tick: e.Tick, Paused: e.paused, Mode: e.mode}
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(clock)
	}
	if clock.Paused {
		return
	}

	// Every sim-hour: telemetry summaries.
	if clock.Tick%simtime.TicksPerSimHour == 0 && e.OnHour != nil {
		e.OnHour(clock)
	}

	// Every sim-day: daily report and save.
	if clock.Tick%simtime.TicksPerSimDay == 0 && e.OnDay != nil {
		e.OnDay(clock)
	}

	// Every sim-week: event trimming.
	if clock.Tick%simtime.TicksPerSimWeek == 0 && e.OnWeek != nil {
		e.OnWeek(clock)
	}
}
