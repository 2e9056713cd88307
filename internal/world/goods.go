// Package world provides the game state data model: goods, towns, and the
// immutable GameState that every simulation phase transforms.
package world

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// GoodID identifies one of the fixed set of tradeable goods.
type GoodID uint8

const (
	GoodFish GoodID = iota
	GoodTimber
	GoodOre
)

// NumGoods is the size of the closed good set.
const NumGoods = 3

// AllGoods lists every good in canonical order. Iteration over goods always
// uses this order so results never depend on map ordering.
var AllGoods = [NumGoods]GoodID{GoodFish, GoodTimber, GoodOre}

var goodNames = [NumGoods]string{"fish", "timber", "ore"}

// String returns the good's wire identifier.
func (g GoodID) String() string {
	if int(g) < NumGoods {
		return goodNames[g]
	}
	return fmt.Sprintf("good(%d)", uint8(g))
}

// Valid reports whether g names a member of the good set.
func (g GoodID) Valid() bool {
	return int(g) < NumGoods
}

// ParseGood maps a wire identifier to its GoodID.
func ParseGood(s string) (GoodID, bool) {
	for i, name := range goodNames {
		if name == s {
			return GoodID(i), true
		}
	}
	return 0, false
}

func (g GoodID) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid good %d", uint8(g))
	}
	return []byte(g.String()), nil
}

func (g *GoodID) UnmarshalText(b []byte) error {
	id, ok := ParseGood(string(b))
	if !ok {
		return fmt.Errorf("unknown good %q", string(b))
	}
	*g = id
	return nil
}

// PerGood holds one value per good, indexed by GoodID. Being an array it
// copies by value, which keeps towns free of shared mutable state.
type PerGood[T any] [NumGoods]T

// Get returns the value for good g.
func (p PerGood[T]) Get(g GoodID) T { return p[g] }

// With returns a copy of p with good g set to v.
func (p PerGood[T]) With(g GoodID, v T) PerGood[T] {
	p[g] = v
	return p
}

// MarshalJSON encodes the values as an object keyed by good identifier.
func (p PerGood[T]) MarshalJSON() ([]byte, error) {
	m := make(map[string]T, NumGoods)
	for _, g := range AllGoods {
		m[g.String()] = p[g]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by good identifier. Missing goods
// keep their current value; unknown goods are an error.
func (p *PerGood[T]) UnmarshalJSON(b []byte) error {
	var m map[string]T
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	return p.fill(m)
}

// UnmarshalYAML decodes a mapping keyed by good identifier.
func (p *PerGood[T]) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]T
	if err := value.Decode(&m); err != nil {
		return err
	}
	return p.fill(m)
}

func (p *PerGood[T]) fill(m map[string]T) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := *p
	for _, k := range keys {
		g, ok := ParseGood(k)
		if !ok {
			return fmt.Errorf("unknown good %q", k)
		}
		out[g] = m[k]
	}
	*p = out
	return nil
}

// GoodEffects are the secondary stat changes a trade in the good confers.
type GoodEffects struct {
	ProsperityDelta int `json:"prosperityDelta" yaml:"prosperity_delta"`
	MilitaryDelta   int `json:"militaryDelta" yaml:"military_delta"`
}

// GoodConfig describes one good.
type GoodConfig struct {
	ID      GoodID      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Effects GoodEffects `json:"effects" yaml:"effects"`
}

// Catalog holds the configuration of every good.
type Catalog = PerGood[GoodConfig]

// DefaultCatalog returns the stock good definitions.
func DefaultCatalog() Catalog {
	return Catalog{
		GoodFish:   {ID: GoodFish, Name: "Fish", Effects: GoodEffects{ProsperityDelta: 1}},
		GoodTimber: {ID: GoodTimber, Name: "Timber", Effects: GoodEffects{ProsperityDelta: 1, MilitaryDelta: 1}},
		GoodOre:    {ID: GoodOre, Name: "Ore", Effects: GoodEffects{MilitaryDelta: 2}},
	}
}
