package game

import "github.com/pthm-cable/meadow/brain"

// shuffle performs an in-place Fisher-Yates shuffle drawing from rng.
func shuffle[T any](xs []T, rng brain.Source) {
	for i := len(xs) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		xs[i], xs[j] = xs[j], xs[i]
	}
}
