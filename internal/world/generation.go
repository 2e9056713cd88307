// Town generation using layered simplex noise.
// Each good gets its own noise field over the hex grid; towns settle on the
// richest sites and the fields under a site decide how abundant each good
// is locally.
package world

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds town generation parameters.
type GenConfig struct {
	Towns      int          `yaml:"towns"`        // Number of towns to place
	Seed       int64        `yaml:"seed"`         // Noise seed
	Spacing    float64      `yaml:"spacing"`      // Noise-space distance between adjacent hexes
	MinDist    int          `yaml:"min_distance"` // Minimum hex distance between towns
	BaseStock  int          `yaml:"base_stock"`   // Stock of a good at average abundance
	Treasury   int          `yaml:"treasury"`     // Treasury at average abundance
	BasePrices PerGood[int] `yaml:"base_prices"`  // Opening quote for every good
	AIProfile  string       `yaml:"ai_profile"`   // Profile assigned to every town but the first ("" = none)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Towns:      4,
		Seed:       42,
		Spacing:    0.6,
		MinDist:    3,
		BaseStock:  100,
		Treasury:   1000,
		BasePrices: PerGood[int]{10, 12, 20},
		AIProfile:  "trader",
	}
}

// Generated is the output of Generate: the initial towns plus the
// per-town production multipliers implied by local abundance.
type Generated struct {
	Towns       []Town
	Multipliers map[string]PerGood[float64]
}

// Generate creates towns deterministically from cfg.Seed. Sites are ranked
// by siteScore and the best one becomes the first, player-controlled town.
func Generate(cfg GenConfig) Generated {
	if cfg.Spacing <= 0 {
		cfg.Spacing = 1
	}

	var fields [NumGoods]opensimplex.Noise
	for _, g := range AllGoods {
		fields[g] = opensimplex.NewNormalized(cfg.Seed + int64(g))
	}
	wealthNoise := opensimplex.NewNormalized(cfg.Seed + NumGoods)

	// Abundance in [0.5, 1.5): scarce towns hold and produce less.
	abundance := func(g GoodID, c HexCoord) float64 {
		x, y := c.point()
		return 0.5 + octaveNoise(fields[g], x*cfg.Spacing, y*cfg.Spacing, 3, 0.35, 0.5)
	}
	richness := func(c HexCoord) float64 {
		total := 0.0
		for _, g := range AllGoods {
			total += abundance(g, c)
		}
		return total
	}
	sites := placeTowns(cfg.Towns, cfg.MinDist, func(c HexCoord) float64 {
		return siteScore(c, richness)
	})
	names := generateNames(rand.New(rand.NewSource(cfg.Seed+200)), len(sites))

	out := Generated{
		Towns:       make([]Town, 0, len(sites)),
		Multipliers: make(map[string]PerGood[float64], len(sites)),
	}

	for i, site := range sites {
		id := fmt.Sprintf("town-%d", i+1)

		var stock PerGood[int]
		var mult PerGood[float64]
		for _, g := range AllGoods {
			a := abundance(g, site)
			stock[g] = int(math.Round(float64(cfg.BaseStock) * a))
			mult[g] = math.Round(a*100) / 100
		}

		x, y := site.point()
		wealth := 0.5 + octaveNoise(wealthNoise, x*cfg.Spacing, y*cfg.Spacing, 2, 0.25, 0.5)

		t := Town{
			ID:        id,
			Name:      names[i],
			Site:      site,
			Resources: stock,
			Prices:    cfg.BasePrices,
			Treasury:  int(math.Round(float64(cfg.Treasury) * wealth)),
		}
		if i > 0 {
			t.AIProfile = cfg.AIProfile
		}
		out.Towns = append(out.Towns, t)
		out.Multipliers[id] = mult
	}
	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// siteScore is the richness of c plus the mean richness of its six
// neighbors, so a town in a rich region outranks an isolated rich hex.
func siteScore(c HexCoord, richness func(HexCoord) float64) float64 {
	around := 0.0
	for _, n := range c.Neighbors() {
		around += richness(n)
	}
	return richness(c) + around/6
}
