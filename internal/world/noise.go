package world

import (
	"github.com/ojrac/opensimplex-go"
)

// octaveNoise2D sums octaves of normalized simplex noise. The result is in [0, 1].
func octaveNoise2D(n opensimplex.Noise, x, z float64, octaves int, persistence, lacunarity float64) float64 {
	total := 0.0
	amp := 1.0
	freq := 1.0
	norm := 0.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*freq, z*freq) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}

func hash2(x int64, z int64, seed int64) uint64 {
	// SplitMix64 style integer hash, stable across runs for same inputs
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

// chance returns a deterministic value in [0, 1) for a column and purpose
func chance(x, z int, seed int64, salt uint64) float64 {
	h := hash2(int64(x), int64(z), seed^int64(salt*0x632BE59BD9B4E019))
	return float64(h&0xFFFFFFFF) / float64(1<<32)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
