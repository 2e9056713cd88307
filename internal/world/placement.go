// Town placement on an axial hex grid.
// Every hex in range is scored and towns take the best sites, kept apart by
// a minimum hex distance.
package world

import (
	"math"
	"math/rand"
	"sort"
)

// HexCoord is a position on the hex grid in axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q" yaml:"q"`
	R int `json:"r" yaml:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// hexDirections are the six neighbor offsets, in ring-walk order.
var hexDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range hexDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	return (abs(a.Q-b.Q) + abs(a.R-b.R) + abs(a.S()-b.S())) / 2
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// point maps a hex center to the plane (pointy-top layout, unit size).
func (h HexCoord) point() (x, y float64) {
	x = math.Sqrt(3) * (float64(h.Q) + float64(h.R)/2)
	y = 1.5 * float64(h.R)
	return x, y
}

// spiral lists every hex within radius of the origin: the origin first,
// then each ring outward, each ring walked in direction order.
func spiral(radius int) []HexCoord {
	out := []HexCoord{{}}
	for k := 1; k <= radius; k++ {
		h := HexCoord{Q: hexDirections[4].Q * k, R: hexDirections[4].R * k}
		for _, dir := range hexDirections {
			for j := 0; j < k; j++ {
				out = append(out, h)
				h = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
			}
		}
	}
	return out
}

// placeTowns picks count sites, best score first, no two closer than
// minDist. The search radius grows until enough sites fit.
func placeTowns(count, minDist int, score func(HexCoord) float64) []HexCoord {
	if count <= 0 {
		return nil
	}
	if minDist < 1 {
		minDist = 1
	}

	type scored struct {
		coord HexCoord
		score float64
	}

	for radius := minDist * count; ; radius *= 2 {
		hexes := spiral(radius)
		candidates := make([]scored, len(hexes))
		for i, c := range hexes {
			candidates[i] = scored{c, score(c)}
		}
		// Stable so equal scores keep spiral order.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})

		var sites []HexCoord
		for _, c := range candidates {
			if len(sites) == count {
				break
			}
			if tooClose(c.coord, sites, minDist) {
				continue
			}
			sites = append(sites, c.coord)
		}
		if len(sites) == count {
			return sites
		}
	}
}

func tooClose(coord HexCoord, existing []HexCoord, minDist int) bool {
	for _, e := range existing {
		if Distance(coord, e) < minDist {
			return true
		}
	}
	return false
}

// generateNames produces procedural town names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Bright", "High", "Low", "Old",
		"Far", "Deep", "Salt", "Gold", "Frost", "Oak", "Copper", "River",
	}
	suffixes := []string{
		"haven", "ford", "wick", "bridge", "gate", "stead", "field",
		"dale", "vale", "port", "bury", "marsh", "well", "brook",
		"cliff", "moor", "ridge", "reach",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		// Repeats are allowed only once every pairing is taken.
		if used[name] && len(used) < len(prefixes)*len(suffixes) {
			continue
		}
		used[name] = true
		names = append(names, name)
	}

	return names
}
