// AI trading profiles: how a town weighs candidate trades and how much it
// moves per turn. Built-in archetypes cover the common temperaments.
package agents

import (
	"fmt"
	"math"
	"sort"
)

// Mode selects among scored candidates.
type Mode string

const (
	ModeGreedy Mode = "greedy" // Highest score, first wins ties
	ModeRandom Mode = "random" // Seeded index over the candidates
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeGreedy || m == ModeRandom
}

// Weights scale the three valuation terms.
type Weights struct {
	PriceSpread float64 `json:"priceSpread" yaml:"price_spread"`
	Prosperity  float64 `json:"prosperity" yaml:"prosperity"`
	Military    float64 `json:"military" yaml:"military"`
}

// Profile drives one AI town.
type Profile struct {
	ID      string  `json:"id" yaml:"id"`
	Mode    Mode    `json:"mode" yaml:"mode"`
	Weights Weights `json:"weights" yaml:"weights"`

	// Quantity caps; zero or negative means uncapped.
	MaxQuantityPerTrade int `json:"maxQuantityPerTrade" yaml:"max_quantity_per_trade"`
	MaxQuantityPerTurn  int `json:"maxQuantityPerTurn" yaml:"max_quantity_per_turn"`

	// CooldownTurns blocks re-buying the same good for this many turns.
	CooldownTurns int `json:"cooldownTurns" yaml:"cooldown_turns"`
}

// QuantityCap is the tighter of the two positive caps, or 0 when uncapped.
// A town makes at most one trade per turn, so the per-turn cap bounds it too.
func (p Profile) QuantityCap() int {
	lo := 0
	for _, c := range []int{p.MaxQuantityPerTrade, p.MaxQuantityPerTurn} {
		if c > 0 && (lo == 0 || c < lo) {
			lo = c
		}
	}
	return lo
}

// ConfigError reports a malformed AI profile.
type ConfigError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ai config %s: %s", e.Path, e.Message)
}

// Validate checks p, reporting paths under profiles.<id>.
func (p Profile) Validate() error {
	base := "profiles." + p.ID
	if p.ID == "" {
		return &ConfigError{Path: "profiles", Message: "profile id must not be empty"}
	}
	if !p.Mode.Valid() {
		return &ConfigError{Path: base + ".mode", Message: fmt.Sprintf("unknown mode %q", p.Mode)}
	}
	weights := []struct {
		name string
		v    float64
	}{
		{"priceSpread", p.Weights.PriceSpread},
		{"prosperity", p.Weights.Prosperity},
		{"military", p.Weights.Military},
	}
	for _, w := range weights {
		if math.IsNaN(w.v) || math.IsInf(w.v, 0) {
			return &ConfigError{Path: base + ".weights." + w.name, Message: "must be finite"}
		}
	}
	if p.CooldownTurns < 0 {
		return &ConfigError{Path: base + ".cooldownTurns", Message: "must not be negative"}
	}
	return nil
}

// Archetype names for the built-in profiles.
const (
	ArchTrader  = "trader"
	ArchBuilder = "builder"
	ArchWarlord = "warlord"
	ArchGambler = "gambler"
)

var archetypes = map[string]Profile{
	ArchTrader: {
		Mode:                ModeGreedy,
		Weights:             Weights{PriceSpread: 1},
		MaxQuantityPerTrade: 50,
	},
	ArchBuilder: {
		Mode:                ModeGreedy,
		Weights:             Weights{PriceSpread: 0.5, Prosperity: 40},
		MaxQuantityPerTrade: 30,
		CooldownTurns:       1,
	},
	ArchWarlord: {
		Mode:                ModeGreedy,
		Weights:             Weights{PriceSpread: 0.25, Military: 60},
		MaxQuantityPerTrade: 40,
		MaxQuantityPerTurn:  25,
		CooldownTurns:       2,
	},
	ArchGambler: {
		Mode:                ModeRandom,
		Weights:             Weights{PriceSpread: 1},
		MaxQuantityPerTrade: 20,
	},
}

// Archetype returns the built-in profile with the given name.
func Archetype(name string) (Profile, bool) {
	p, ok := archetypes[name]
	p.ID = name
	return p, ok
}

// DefaultProfiles returns every built-in profile keyed by id.
func DefaultProfiles() map[string]Profile {
	out := make(map[string]Profile, len(archetypes))
	for name := range archetypes {
		out[name], _ = Archetype(name)
	}
	return out
}

// ArchetypeNames lists the built-in profiles in sorted order.
func ArchetypeNames() []string {
	names := make([]string, 0, len(archetypes))
	for name := range archetypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
