// Package statistics estimates uncertainty in per-image accuracy scores.
package statistics

import (
	"math"
	"math/rand/v2"
	"slices"
)

// ConfidenceInterval is a percentile bootstrap interval around a sample mean.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// DefaultSeed keeps leaderboard intervals stable between report runs.
const DefaultSeed = 1

// BootstrapCIWithSeed computes a bootstrap confidence interval over the given
// scores. confidenceLevel should be in (0, 1), e.g. 0.95. Fewer than 2 data
// points give a degenerate interval at the mean. A negative seed uses a
// non-deterministic source.
func BootstrapCIWithSeed(scores []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(scores)
	m := mean(scores)
	if n < 2 {
		return ConfidenceInterval{Lower: m, Upper: m, Mean: m, ConfidenceLevel: confidenceLevel}
	}

	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewPCG(uint64(seed), 0))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	iters := DefaultBootstrapIterations
	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := range iters {
		for j := range n {
			sample[j] = scores[rng.IntN(n)]
		}
		bootMeans[i] = mean(sample)
	}
	slices.Sort(bootMeans)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := min(int(math.Floor((1.0-alpha/2.0)*float64(iters))), iters-1)

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// PairedDifferenceCI bootstraps the mean of a[i]-b[i], e.g. two models scored
// on the same images. Pairs beyond the shorter slice are ignored.
func PairedDifferenceCI(a, b []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := min(len(a), len(b))
	diffs := make([]float64, n)
	for i := range n {
		diffs[i] = a[i] - b[i]
	}
	return BootstrapCIWithSeed(diffs, confidenceLevel, seed)
}

// IsSignificant reports whether a difference interval excludes zero.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
