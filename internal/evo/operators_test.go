package evo

import (
	"math"
	"math/rand"
	"testing"
)

func TestArithmeticCrossoverBlendsWithinParentRange(t *testing.T) {
	p1 := []float64{1, 1, 1, 1}
	p2 := []float64{-1, 0, 3, 1}
	rng := rand.New(rand.NewSource(17))

	c1, c2 := ArithmeticCrossover{}.Pair(rng, p1, p2)
	if len(c1) != len(p1) || len(c2) != len(p2) {
		t.Fatalf("offspring lengths %d/%d, want %d", len(c1), len(c2), len(p1))
	}
	for i := range p1 {
		lo, hi := math.Min(p1[i], p2[i]), math.Max(p1[i], p2[i])
		if c1[i] < lo || c1[i] > hi {
			t.Fatalf("c1[%d]=%v outside [%v, %v]", i, c1[i], lo, hi)
		}
		if c2[i] < lo || c2[i] > hi {
			t.Fatalf("c2[%d]=%v outside [%v, %v]", i, c2[i], lo, hi)
		}
		// Offspring are mirror blends, so each gene pair sums to the
		// parents' sum.
		if got, want := c1[i]+c2[i], p1[i]+p2[i]; math.Abs(got-want) > 1e-12 {
			t.Fatalf("gene %d sum %v, want %v", i, got, want)
		}
	}
}

func TestArithmeticCrossoverDoesNotAliasParents(t *testing.T) {
	p1 := []float64{1, 2}
	p2 := []float64{3, 4}
	c1, c2 := ArithmeticCrossover{}.Pair(rand.New(rand.NewSource(1)), p1, p2)
	c1[0], c2[0] = 99, 99
	if p1[0] != 1 || p2[0] != 3 {
		t.Fatal("offspring share storage with parents")
	}
}

func TestSinglePointCrossoverSwapsTail(t *testing.T) {
	p1 := []float64{1, 1, 1, 1, 1}
	p2 := []float64{2, 2, 2, 2, 2}
	c1, c2 := SinglePointCrossover{}.Pair(rand.New(rand.NewSource(9)), p1, p2)

	cut := -1
	for i := range c1 {
		if c1[i] == 2 {
			cut = i
			break
		}
	}
	if cut < 1 || cut >= len(p1) {
		t.Fatalf("cut index %d, want in [1, %d)", cut, len(p1))
	}
	for i := range c1 {
		wantC1, wantC2 := 1.0, 2.0
		if i >= cut {
			wantC1, wantC2 = 2.0, 1.0
		}
		if c1[i] != wantC1 || c2[i] != wantC2 {
			t.Fatalf("index %d got (%v, %v), want (%v, %v)", i, c1[i], c2[i], wantC1, wantC2)
		}
	}
}

func TestSinglePointCrossoverShortParents(t *testing.T) {
	c1, c2 := SinglePointCrossover{}.Pair(rand.New(rand.NewSource(2)), []float64{7}, []float64{8})
	if c1[0] != 7 || c2[0] != 8 {
		t.Fatalf("single-gene parents changed: %v, %v", c1, c2)
	}
}

func TestGaussianMutationRateZeroIsIdentity(t *testing.T) {
	weights := []float64{0.1, -0.2, 0.3}
	out := GaussianMutation{Rate: 0, Sigma: 1}.Apply(rand.New(rand.NewSource(4)), weights)
	for i := range weights {
		if out[i] != weights[i] {
			t.Fatalf("index %d mutated at rate 0: %v -> %v", i, weights[i], out[i])
		}
	}
}

func TestGaussianMutationRateOnePerturbsEveryGene(t *testing.T) {
	weights := make([]float64, 64)
	out := GaussianMutation{Rate: 1, Sigma: 0.5}.Apply(rand.New(rand.NewSource(6)), weights)
	for i := range out {
		if out[i] == 0 {
			t.Fatalf("gene %d unchanged at rate 1", i)
		}
	}
}

func TestGaussianMutationClips(t *testing.T) {
	weights := make([]float64, 256)
	out := GaussianMutation{Rate: 1, Sigma: 10, Clip: 1}.Apply(rand.New(rand.NewSource(8)), weights)
	for i, w := range out {
		if w < -1 || w > 1 {
			t.Fatalf("gene %d = %v escaped clip range [-1, 1]", i, w)
		}
	}
}

func TestGaussianMutationDoesNotAliasInput(t *testing.T) {
	weights := []float64{0.5}
	out := GaussianMutation{Rate: 1, Sigma: 1}.Apply(rand.New(rand.NewSource(10)), weights)
	out[0] = 42
	if weights[0] != 0.5 {
		t.Fatal("mutation output shares storage with input")
	}
}
