package agents

import (
	"sort"

	"github.com/talgya/trade-towns/internal/world"
)

// Cooldowns maps "townId:goodId" to the first turn the town may buy that
// good again. A nil map has no cooldowns.
type Cooldowns map[string]int

// CooldownKey builds the map key for a town and good.
func CooldownKey(townID string, g world.GoodID) string {
	return townID + ":" + g.String()
}

// Blocked reports whether townID is still cooling down on g at turn.
func (c Cooldowns) Blocked(townID string, g world.GoodID, turn int) bool {
	until, ok := c[CooldownKey(townID, g)]
	return ok && turn < until
}

// With returns a copy of c with townID blocked on g until the given turn.
func (c Cooldowns) With(townID string, g world.GoodID, until int) Cooldowns {
	out := make(Cooldowns, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[CooldownKey(townID, g)] = until
	return out
}

// Prune returns a copy of c without entries that have elapsed by turn.
func (c Cooldowns) Prune(turn int) Cooldowns {
	out := make(Cooldowns, len(c))
	for k, v := range c {
		if turn < v {
			out[k] = v
		}
	}
	return out
}

// Keys returns the active keys in sorted order.
func (c Cooldowns) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
