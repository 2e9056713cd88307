// Package engine provides the turn loop: the per-turn phase order and a
// driver that plays turns until told to stop.
package engine

import (
	"context"
	"time"

	"github.com/talgya/trade-towns/internal/world"
)

// Engine drives a Simulation forward turn by turn.
type Engine struct {
	Sim      *Simulation
	Turns    int           // Turns to play; 0 plays until the context ends
	Interval time.Duration // Pause between turns; 0 plays back to back

	// Step plays one turn. Nil means Sim.Advance. Servers that journal
	// turns wrap it so that stepping and journaling happen under one lock.
	Step func() (world.GameState, TurnReport, error)

	// OnTurn observes every report in order, with the state that turn
	// produced. It runs on the engine's goroutine and must not call Step.
	OnTurn func(TurnReport, world.GameState)
}

// NewEngine returns an engine that plays turns back to back.
func NewEngine(sim *Simulation, turns int) *Engine {
	return &Engine{Sim: sim, Turns: turns}
}

// Run plays turns until Turns have been played, ctx is cancelled, or a turn
// fails. Cancellation is checked between turns, never inside one. It
// returns the number of turns played.
func (e *Engine) Run(ctx context.Context) (int, error) {
	log := e.Sim.log
	step := e.Step
	if step == nil {
		step = e.Sim.Advance
	}
	log.Info("simulation engine started", "turn", e.Sim.State().Turn, "turns", e.Turns)

	var tick <-chan time.Time
	if e.Interval > 0 {
		t := time.NewTicker(e.Interval)
		defer t.Stop()
		tick = t.C
	}

	played := 0
	for e.Turns == 0 || played < e.Turns {
		if err := ctx.Err(); err != nil {
			log.Info("simulation engine stopped", "played", played, "reason", err)
			return played, err
		}
		if tick != nil && played > 0 {
			select {
			case <-ctx.Done():
				log.Info("simulation engine stopped", "played", played, "reason", ctx.Err())
				return played, ctx.Err()
			case <-tick:
			}
		}

		next, report, err := step()
		if err != nil {
			log.Error("simulation turn failed", "played", played, "error", err)
			return played, err
		}
		played++
		if e.OnTurn != nil {
			e.OnTurn(report, next)
		}
	}

	log.Info("simulation engine finished", "played", played, "turn", e.Sim.State().Turn)
	return played, nil
}
