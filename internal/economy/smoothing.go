package economy

import "math"

// Smooth moves current toward target by alpha of the gap and rounds:
// round(current + alpha*(target-current)). Alpha is clamped to (0, 1];
// an alpha ≤ 0 leaves the price unchanged.
//
// Because the unrounded result lies between two integers, the rounded result
// does too, so repeated smoothing never moves away from the target.
func Smooth(current, target int, alpha float64) int {
	if alpha <= 0 || math.IsNaN(alpha) {
		return current
	}
	if alpha > 1 {
		alpha = 1
	}
	return int(math.Round(float64(current) + alpha*float64(target-current)))
}
