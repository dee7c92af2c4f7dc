package evo

import "math/rand"

// Crossover produces two offspring weight vectors from two parents of equal
// length. Implementations must not alias parent storage.
type Crossover interface {
	Name() string
	Pair(rng *rand.Rand, p1, p2 []float64) ([]float64, []float64)
}

// ArithmeticCrossover blends the parents whole-vector with one mixing
// coefficient alpha drawn per offspring pair.
type ArithmeticCrossover struct{}

func (ArithmeticCrossover) Name() string {
	return "arithmetic"
}

func (ArithmeticCrossover) Pair(rng *rand.Rand, p1, p2 []float64) ([]float64, []float64) {
	alpha := rng.Float64()
	c1 := make([]float64, len(p1))
	c2 := make([]float64, len(p2))
	for i := range p1 {
		c1[i] = alpha*p1[i] + (1-alpha)*p2[i]
		c2[i] = alpha*p2[i] + (1-alpha)*p1[i]
	}
	return c1, c2
}

// SinglePointCrossover recombines the parents at one random cut index.
type SinglePointCrossover struct{}

func (SinglePointCrossover) Name() string {
	return "single_point"
}

func (SinglePointCrossover) Pair(rng *rand.Rand, p1, p2 []float64) ([]float64, []float64) {
	c1 := append([]float64(nil), p1...)
	c2 := append([]float64(nil), p2...)
	if len(p1) < 2 {
		return c1, c2
	}
	cut := 1 + rng.Intn(len(p1)-1)
	copy(c1[cut:], p2[cut:])
	copy(c2[cut:], p1[cut:])
	return c1, c2
}

// Mutation perturbs a weight vector, returning a fresh vector.
type Mutation interface {
	Name() string
	Apply(rng *rand.Rand, weights []float64) []float64
}

// GaussianMutation perturbs each weight independently with probability Rate
// by zero-mean noise of standard deviation Sigma, clipping the result to
// [-Clip, Clip] when Clip > 0.
type GaussianMutation struct {
	Rate  float64
	Sigma float64
	Clip  float64
}

func (GaussianMutation) Name() string {
	return "gaussian"
}

func (m GaussianMutation) Apply(rng *rand.Rand, weights []float64) []float64 {
	out := append([]float64(nil), weights...)
	for i := range out {
		if rng.Float64() >= m.Rate {
			continue
		}
		out[i] += rng.NormFloat64() * m.Sigma
		if m.Clip > 0 {
			if out[i] > m.Clip {
				out[i] = m.Clip
			} else if out[i] < -m.Clip {
				out[i] = -m.Clip
			}
		}
	}
	return out
}
