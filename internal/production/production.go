package production

import (
	"math"

	"github.com/talgya/trade-towns/internal/entropy"
	"github.com/talgya/trade-towns/internal/world"
)

// maxDelta bounds a single turn's scaled rate before integer conversion.
const maxDelta = 1 << 31

// Options key the jitter for one production pass.
type Options struct {
	Seed string
	Turn int
}

// OptionsFor keys production to the state's own seed and turn.
func OptionsFor(s world.GameState) Options {
	return Options{Seed: s.RNGSeed, Turn: s.Turn}
}

// Entry is the production outcome for one town and good.
type Entry struct {
	TownID  string       `json:"townId"`
	Good    world.GoodID `json:"goodId"`
	Current int          `json:"current"`
	Base    int          `json:"base"`   // floor(rate × multiplier)
	Jitter  int          `json:"jitter"` // 0 when variance is disabled
	Delta   int          `json:"delta"`  // max(0, Base + Jitter)
	Next    int          `json:"next"`
}

// Preview computes what Apply would produce without building a new state.
// Entries are ordered by town, then good.
func Preview(s world.GameState, cfg Config, opts Options) ([]Entry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(s.Towns)*world.NumGoods)
	for _, t := range s.Towns {
		for _, g := range world.AllGoods {
			out = append(out, entry(t, g, cfg, opts))
		}
	}
	return out, nil
}

func entry(t world.Town, g world.GoodID, cfg Config, opts Options) Entry {
	scaled := math.Floor(cfg.BaseRates[g] * cfg.multiplier(t.ID, g))
	if scaled > maxDelta {
		scaled = maxDelta
	}
	e := Entry{TownID: t.ID, Good: g, Current: t.Resources[g], Base: int(scaled)}

	if cfg.Variance.Enabled {
		e.Jitter = entropy.Jitter(opts.Seed, t.ID, opts.Turn, g.String(), cfg.Variance.Magnitude)
	}
	e.Delta = max(0, e.Base+e.Jitter)

	next := max(e.Current+e.Delta, cfg.ClampMin)
	if limit, ok := cfg.ceiling(g); ok {
		next = min(next, limit)
	}
	e.Next = next
	return e
}

// Apply returns s with one turn of production added to every town.
func Apply(s world.GameState, cfg Config, opts Options) (world.GameState, error) {
	entries, err := Preview(s, cfg, opts)
	if err != nil {
		return world.GameState{}, err
	}

	out := s.Clone()
	for i, e := range entries {
		out.Towns[i/world.NumGoods].Resources[e.Good] = e.Next
	}
	return out, nil
}
