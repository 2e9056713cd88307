// Package entropy provides deterministic pseudo-randomness keyed by game seed.
//
// Every random draw in the simulation is a pure function of its inputs so a
// seed reproduces a game exactly. The mixing function is pinned:
//
//  1. FNV-1a (64-bit) over the key parts, each part followed by a 0x1f byte.
//  2. The SplitMix64 finalizer applied to the FNV state.
//
// Integers are keyed by their base-10 representation. Key parts must not
// contain the separator byte (see ValidKeyPart); town IDs are checked when a
// simulation is built. Changing any step changes every seeded game, so treat
// this file as a wire format.
package entropy

import (
	"hash/fnv"
	"strconv"
	"strings"
)

const unitSeparator = 0x1f

// ValidKeyPart reports whether s can be used as a key part without
// colliding with a differently split key.
func ValidKeyPart(s string) bool {
	return !strings.ContainsRune(s, unitSeparator)
}

// Hash64 mixes the key parts into a uniformly distributed 64-bit value.
func Hash64(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{unitSeparator})
	}
	return mix64(h.Sum64())
}

// mix64 is the SplitMix64 finalizer.
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Jitter returns a value in [-magnitude, +magnitude] derived purely from
// (seed, townID, turn, good). A magnitude ≤ 0 yields 0.
func Jitter(seed, townID string, turn int, good string, magnitude int) int {
	if magnitude <= 0 {
		return 0
	}
	span := uint64(2*magnitude + 1)
	h := Hash64(seed, townID, strconv.Itoa(turn), good)
	return int(h%span) - magnitude
}

// Index returns a value in [0, n) derived purely from (seed, townID, n).
// It returns 0 when n ≤ 1.
func Index(seed, townID string, n int) int {
	if n <= 1 {
		return 0
	}
	h := Hash64(seed, townID, strconv.Itoa(n))
	return int(h % uint64(n))
}

// Seed64 folds a string seed into an int64 for libraries that take
// numeric seeds.
func Seed64(seed string) int64 {
	return int64(Hash64(seed) >> 1)
}
