package searcher

import (
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// shannonEntropy of the win/loss/draw distribution in bits. Zero rates contribute
// nothing and an unvisited node has no entropy.
func shannonEntropy(outcomes [3]int, visits int) float64 {
	if visits == 0 {
		return 0
	}
	n := float64(visits)
	rates := []float64{
		float64(outcomes[wins]) / n,
		float64(outcomes[losses]) / n,
		float64(outcomes[draws]) / n,
	}
	return stat.Entropy(rates) / math.Ln2
}

// rating blends the win rate with the outcome entropy.
func rating(outcomes [3]int, visits int, entropyWeight float64) float64 {
	if visits == 0 {
		return 0
	}
	winRate := float64(outcomes[wins]) / float64(visits)
	return winRate + entropyWeight*shannonEntropy(outcomes, visits)
}

func sumSquaredErrors(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	deviations := slices.Clone(values)
	floats.AddConst(-stat.Mean(values, nil), deviations)
	return floats.Dot(deviations, deviations)
}

// bestSplit returns the split point i in [1, n) minimizing
// SSE(values[:i]) + SSE(values[i:]). The first minimum wins. Fewer than two values
// cannot be split and return len(values).
func bestSplit(values []float64) int {
	if len(values) < 2 {
		return len(values)
	}
	bestIndex := 1
	bestSSE := math.Inf(1)
	for i := 1; i < len(values); i++ {
		sse := sumSquaredErrors(values[:i]) + sumSquaredErrors(values[i:])
		if sse < bestSSE {
			bestSSE = sse
			bestIndex = i
		}
	}
	return bestIndex
}
