package searcher

import "math"

// ucb1 precomputes the parent dependent part of the exploration term.
type ucb1 struct {
	exploration float64
	numerator   float64
}

func newUCB1(exploration, logScale float64, parentVisits int) ucb1 {
	return ucb1{
		exploration: exploration,
		numerator:   logScale * math.Log(float64(max(1, parentVisits))),
	}
}

func (u ucb1) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCB1 = q/n + C*sqrt(k*ln(N)/n)
	return q/n + u.exploration*math.Sqrt(u.numerator/n)
}
