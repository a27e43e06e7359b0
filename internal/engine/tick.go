// Package engine provides the turn-based galaxy simulation and its driver.
package engine

import (
	"log/slog"
	"sync/atomic"
)

// Engine drives the simulation forward one turn at a time. Turns run back to
// back; there is no real-time pacing.
type Engine struct {
	Turn            uint64 // Turns completed (monotonic, never resets)
	CheckpointEvery uint64 // Turns between OnCheckpoint calls (0 = never)

	// Callbacks populated during setup.
	OnTurn       func(turn uint64) // Every turn
	OnCheckpoint func(turn uint64) // Every CheckpointEvery turns, and once on stop

	running atomic.Bool
}

// NewEngine creates an engine that resumes counting from turn.
func NewEngine(turn, checkpointEvery uint64) *Engine {
	return &Engine{
		Turn:            turn,
		CheckpointEvery: checkpointEvery,
	}
}

// Run steps the simulation until limit turns have run (0 = no limit) or
// Stop is called. Safe to Stop from another goroutine.
func (e *Engine) Run(limit uint64) {
	e.running.Store(true)
	slog.Info("simulation engine started", "turn", e.Turn, "limit", limit)

	var ran uint64
	for e.running.Load() && (limit == 0 || ran < limit) {
		e.step()
		ran++
	}
	e.running.Store(false)

	if e.OnCheckpoint != nil {
		e.OnCheckpoint(e.Turn)
	}
	slog.Info("simulation engine stopped", "turn", e.Turn, "ran", ran)
}

// Stop halts the loop after the current turn.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// step advances the simulation by one turn.
func (e *Engine) step() {
	if e.OnTurn != nil {
		e.OnTurn(e.Turn)
	}
	e.Turn++

	if e.CheckpointEvery > 0 && e.Turn%e.CheckpointEvery == 0 && e.OnCheckpoint != nil {
		e.OnCheckpoint(e.Turn)
	}
}
