// Package production accrues resources each turn: a base rate per good,
// scaled per town, optionally perturbed by seeded jitter, then clamped.
package production

import (
	"fmt"
	"math"
	"sort"

	"github.com/talgya/trade-towns/internal/world"
)

// Variance controls the seeded jitter added to each production delta.
type Variance struct {
	Enabled   bool `json:"enabled" yaml:"enabled"`
	Magnitude int  `json:"magnitude" yaml:"magnitude"` // 1 or 2
}

// Config is the production table for a game.
type Config struct {
	BaseRates world.PerGood[float64] `json:"baseRates" yaml:"base_rates"`

	// TownMultipliers scales base rates per town. A missing town or a nil
	// good entry means 1.
	TownMultipliers map[string]world.PerGood[*float64] `json:"townMultipliers,omitempty" yaml:"town_multipliers"`

	Caps      world.PerGood[*int] `json:"caps" yaml:"caps"`                      // Per-good stock ceiling
	GlobalCap *int                `json:"globalCap,omitempty" yaml:"global_cap"` // Used when a good has no cap
	ClampMin  int                 `json:"clampMin" yaml:"clamp_min"`             // Stock floor after production
	Variance  Variance            `json:"variance" yaml:"variance"`
}

// DefaultConfig returns modest base rates with variance of 1 and no caps.
func DefaultConfig() Config {
	return Config{
		BaseRates: world.PerGood[float64]{4, 3, 2},
		Variance:  Variance{Enabled: true, Magnitude: 1},
	}
}

// ConfigError reports a malformed production configuration. Like the price
// configuration errors it is fatal at startup.
type ConfigError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("production config %s: %s", e.Path, e.Message)
}

func badConfig(path, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func finiteNonNegative(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0) // NaN fails the comparison
}

// Validate reports the first problem found, walking fields in declaration
// order and towns in sorted order.
func (c Config) Validate() error {
	for _, g := range world.AllGoods {
		if !finiteNonNegative(c.BaseRates[g]) {
			return badConfig("production.baseRates."+g.String(), "rate %v must be finite and non-negative", c.BaseRates[g])
		}
	}

	for _, town := range c.townIDs() {
		m := c.TownMultipliers[town]
		for _, g := range world.AllGoods {
			if m[g] != nil && !finiteNonNegative(*m[g]) {
				return badConfig(fmt.Sprintf("production.townMultipliers.%s.%s", town, g), "multiplier %v must be finite and non-negative", *m[g])
			}
		}
	}

	if c.ClampMin < 0 {
		return badConfig("production.clampMin", "must not be negative, got %d", c.ClampMin)
	}
	for _, g := range world.AllGoods {
		if cp := c.Caps[g]; cp != nil {
			if *cp < 0 {
				return badConfig("production.caps."+g.String(), "must not be negative, got %d", *cp)
			}
			if *cp < c.ClampMin {
				return badConfig("production.caps."+g.String(), "cap %d is below clampMin %d", *cp, c.ClampMin)
			}
		}
	}
	if c.GlobalCap != nil {
		if *c.GlobalCap < 0 {
			return badConfig("production.globalCap", "must not be negative, got %d", *c.GlobalCap)
		}
		if *c.GlobalCap < c.ClampMin {
			return badConfig("production.globalCap", "cap %d is below clampMin %d", *c.GlobalCap, c.ClampMin)
		}
	}

	if c.Variance.Enabled && c.Variance.Magnitude != 1 && c.Variance.Magnitude != 2 {
		return badConfig("production.variance.magnitude", "must be 1 or 2 when variance is enabled, got %d", c.Variance.Magnitude)
	}
	return nil
}

// ValidateTowns checks that every town named in TownMultipliers exists in s.
func (c Config) ValidateTowns(s world.GameState) error {
	for _, town := range c.townIDs() {
		if s.TownIndex(town) < 0 {
			return badConfig("production.townMultipliers."+town, "unknown town %q", town)
		}
	}
	return nil
}

func (c Config) townIDs() []string {
	ids := make([]string, 0, len(c.TownMultipliers))
	for id := range c.TownMultipliers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// multiplier returns the scale for town and good, 1 when unset.
func (c Config) multiplier(town string, g world.GoodID) float64 {
	m, ok := c.TownMultipliers[town]
	if !ok || m[g] == nil {
		return 1
	}
	return *m[g]
}

// ceiling returns the stock cap for g and whether one applies.
func (c Config) ceiling(g world.GoodID) (int, bool) {
	if cp := c.Caps[g]; cp != nil {
		return *cp, true
	}
	if c.GlobalCap != nil {
		return *c.GlobalCap, true
	}
	return 0, false
}
