package nn

import (
	"math"
	"math/rand"
	"testing"

	"tictacevo/internal/game"
)

func TestDecodeRejectsWrongLength(t *testing.T) {
	for _, length := range []int{0, 1, WeightCount - 1, WeightCount + 1} {
		if _, err := Decode(make([]float64, length)); err == nil {
			t.Fatalf("expected error for length %d", length)
		}
	}
}

func TestDecodeFlattenRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	weights := make([]float64, WeightCount)
	for i := range weights {
		weights[i] = rng.NormFloat64()
	}

	net, err := Decode(weights)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := net.Flatten()
	if len(got) != WeightCount {
		t.Fatalf("flatten length = %d, want %d", len(got), WeightCount)
	}
	for i := range weights {
		if got[i] != weights[i] {
			t.Fatalf("round trip mismatch at %d: got %v want %v", i, got[i], weights[i])
		}
	}
}

func TestForwardMatchesHandComputation(t *testing.T) {
	// One non-zero path: input 0 -> hidden 0 -> output 0, all else zero.
	weights := make([]float64, WeightCount)
	weights[0] = 0.5        // w1[0][0]
	weights[81] = 0.25      // b1[0]
	weights[81+9] = 2.0     // w2[0][0]
	weights[81+9+81] = -1.0 // b2[0]

	net, err := Decode(weights)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var input [Inputs]float64
	input[0] = 1
	out := net.Forward(input)

	want := math.Tanh(0.75)*2.0 - 1.0
	if math.Abs(out[0]-want) > 1e-12 {
		t.Fatalf("out[0] = %v, want %v", out[0], want)
	}
	if out[1] != 0 {
		t.Fatalf("out[1] = %v, want 0", out[1])
	}
}

func TestSelectMoveZeroWeightsPicksLowestIndex(t *testing.T) {
	net, err := Decode(make([]float64, WeightCount))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	move, ok := net.SelectMove([Inputs]float64{})
	if !ok || move != 0 {
		t.Fatalf("expected cell 0 on the empty board, got %d ok=%v", move, ok)
	}
}

func TestSelectMoveNeverPicksOccupiedCell(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	weights := make([]float64, WeightCount)
	for i := range weights {
		weights[i] = rng.Float64()*2 - 1
	}
	net, err := Decode(weights)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	for trial := 0; trial < 200; trial++ {
		var input [Inputs]float64
		empty := 0
		for i := range input {
			switch rng.Intn(3) {
			case 0:
				input[i] = 1
			case 1:
				input[i] = -1
			default:
				empty++
			}
		}
		move, ok := net.SelectMove(input)
		if empty == 0 {
			if ok {
				t.Fatalf("expected ok=false on a full board")
			}
			continue
		}
		if !ok {
			t.Fatalf("expected a move with %d empty cells", empty)
		}
		if input[move] != 0 {
			t.Fatalf("selected occupied cell %d on %v", move, input)
		}
	}
}

func TestPolicyChoosesLegalBoardMove(t *testing.T) {
	net, err := Decode(make([]float64, WeightCount))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	policy := NewPolicy(net)

	b := game.NewBoard()
	b.Apply(0, game.O)
	move, ok := policy.ChooseMove(b, game.X)
	if !ok {
		t.Fatalf("expected a move")
	}
	if move != 1 {
		t.Fatalf("zero-weight policy should pick the lowest empty cell 1, got %d", move)
	}
}
