package agents

import "github.com/talgya/trade-towns/internal/entropy"

// Select picks one of scored and returns its index, or false when scored is
// empty. Greedy takes the first maximum; random draws a seeded index that
// depends only on (seed, townID, len(scored)).
func Select(scored []Scored, mode Mode, seed, townID string) (int, bool) {
	if len(scored) == 0 {
		return 0, false
	}
	if mode == ModeRandom {
		return entropy.Index(seed, townID, len(scored)), true
	}

	best := 0
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[best].Score {
			best = i
		}
	}
	return best, true
}
