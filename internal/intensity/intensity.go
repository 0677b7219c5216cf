// Package intensity maps raw association scores to display intensities in
// [0, 1]. Every mapping is a pure function of its inputs.
package intensity

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Strategy names a score-to-intensity mapping.
type Strategy string

const (
	// ExpDist exponentiates raw scores; shows only the strongest associations.
	ExpDist Strategy = "expdist"
	// ExpDistNorm exponentiates scores normalized jointly with the abstract score.
	ExpDistNorm Strategy = "expdist-norm"
	// Polynomial cuts off the lower half of the normalized range and raises the rest to a power.
	Polynomial Strategy = "polynomial"
	// Rank uses only the rank order of the scores.
	Rank Strategy = "rank"
	// Binary shows every color above a threshold at full intensity.
	Binary Strategy = "binary"
)

// Default is the strategy used when none is configured.
const Default = ExpDistNorm

const (
	steepnessSubtracted = 35.0
	steepnessRaw        = 48.5
	steepnessNorm       = 4.0
	noiseFloor          = 0.01
	rankSteepness       = 10.0
)

// Strategies lists every known strategy.
func Strategies() []Strategy {
	return []Strategy{ExpDist, ExpDistNorm, Polynomial, Rank, Binary}
}

// ParseStrategy validates s. The empty string selects Default.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return Default, nil
	}
	for _, st := range Strategies() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown mapping %q: must be one of %v", s, Strategies())
}

// Params tunes the strategies.
type Params struct {
	// Subtracted selects the ExpDist steepness; set it when the palette had
	// its abstract vector subtracted.
	Subtracted bool
	Cutoff     float64 // Polynomial
	Power      float64 // Polynomial
	Threshold  float64 // Binary
}

// DefaultParams returns the standard tuning.
func DefaultParams(subtracted bool) Params {
	return Params{
		Subtracted: subtracted,
		Cutoff:     0.50,
		Power:      1.6,
		Threshold:  0.0,
	}
}

// Validate reports tuning values that would make a mapping undefined.
func (p Params) Validate() error {
	if math.IsNaN(p.Cutoff) || p.Cutoff < 0 || p.Cutoff >= 1 {
		return fmt.Errorf("cutoff must be in [0, 1), got %v", p.Cutoff)
	}
	if math.IsNaN(p.Power) || p.Power <= 0 {
		return fmt.Errorf("power must be positive, got %v", p.Power)
	}
	if math.IsNaN(p.Threshold) {
		return fmt.Errorf("threshold must be a number")
	}
	return nil
}

// Map applies strategy s to scores.
func Map(s Strategy, scores []float64, abstract float64, p Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch s {
	case ExpDist:
		return ExpDistMap(scores, p.Subtracted), nil
	case ExpDistNorm:
		return ExpDistNormMap(scores, abstract), nil
	case Polynomial:
		return PolynomialMap(scores, abstract, p.Cutoff, p.Power), nil
	case Rank:
		return RankMap(scores), nil
	case Binary:
		return BinaryMap(scores, p.Threshold), nil
	default:
		return nil, fmt.Errorf("unknown mapping %q", s)
	}
}

// ExpDistMap returns exp(score*k) scaled so the maximum is 1.
func ExpDistMap(scores []float64, subtracted bool) []float64 {
	k := steepnessRaw
	if subtracted {
		k = steepnessSubtracted
	}
	return expScaled(scores, k)
}

// ExpDistNormMap normalizes scores over the range spanned by the scores and
// the abstract score, then applies a gentle exponential. A degenerate range
// maps everything to 1.
func ExpDistNormMap(scores []float64, abstract float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}
	lo, hi := jointRange(scores, abstract)
	if hi == lo {
		return ones(len(scores))
	}
	norm := make([]float64, len(scores))
	for i, s := range scores {
		norm[i] = (s - lo) / (hi - lo)
	}
	return expScaled(norm, steepnessNorm)
}

// PolynomialMap normalizes over the joint range, discards everything below
// cutoff and raises the remainder to power. Ranges narrower than the noise
// floor carry no usable signal and map everything to 1.
func PolynomialMap(scores []float64, abstract, cutoff, power float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}
	lo, hi := jointRange(scores, abstract)
	if hi-lo < noiseFloor {
		return ones(len(scores))
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		x := (s-lo)/(hi-lo) - cutoff
		x = math.Max(x, 0) / (1 - cutoff)
		out[i] = clip(math.Pow(x, power))
	}
	return out
}

// RankMap assigns exp(-(1 - i/N)*10) to the score of ascending rank i.
func RankMap(scores []float64) []float64 {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	out := make([]float64, n)
	for i, idx := range order {
		out[idx] = clip(math.Exp(-(1 - float64(i)/float64(n)) * rankSteepness))
	}
	return out
}

// BinaryMap returns 1 for every score strictly above threshold, else 0.
func BinaryMap(scores []float64, threshold float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		if s > threshold {
			out[i] = 1
		}
	}
	return out
}

func expScaled(x []float64, k float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}
	// Shifting by the maximum keeps exp in (0, 1] for any input scale.
	hi := floats.Max(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = clip(math.Exp((v - hi) * k))
	}
	return out
}

func jointRange(scores []float64, abstract float64) (lo, hi float64) {
	return math.Min(floats.Min(scores), abstract), math.Max(floats.Max(scores), abstract)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func clip(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Min(math.Max(x, 0), 1)
}
