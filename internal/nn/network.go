package nn

import (
	"fmt"
	"math"

	"tictacevo/internal/game"
)

const (
	Inputs  = 9
	Hidden  = 9
	Outputs = 9

	// WeightCount is the wire-format length of a flat weight vector:
	// W1 (9x9), b1 (9), W2 (9x9), b2 (9), in that exact order. Every
	// component exchanging weight vectors relies on this layout.
	WeightCount = Inputs*Hidden + Hidden + Hidden*Outputs + Outputs
)

// Network is a fixed-topology feed-forward policy decoded from a flat
// weight vector: tanh hidden layer, identity output. It holds no mutable
// state beyond the decoded weights.
type Network struct {
	w1 [Inputs][Hidden]float64
	b1 [Hidden]float64
	w2 [Hidden][Outputs]float64
	b2 [Outputs]float64
}

// Decode splits a flat weight vector into the layer matrices. W1 and W2 are
// stored row-major: weights[i*Hidden+j] connects input i to hidden unit j.
func Decode(weights []float64) (*Network, error) {
	if len(weights) != WeightCount {
		return nil, fmt.Errorf("weight vector length must be %d, got %d", WeightCount, len(weights))
	}

	n := &Network{}
	pos := 0
	for i := 0; i < Inputs; i++ {
		for j := 0; j < Hidden; j++ {
			n.w1[i][j] = weights[pos]
			pos++
		}
	}
	for j := 0; j < Hidden; j++ {
		n.b1[j] = weights[pos]
		pos++
	}
	for j := 0; j < Hidden; j++ {
		for k := 0; k < Outputs; k++ {
			n.w2[j][k] = weights[pos]
			pos++
		}
	}
	for k := 0; k < Outputs; k++ {
		n.b2[k] = weights[pos]
		pos++
	}
	return n, nil
}

// Flatten re-encodes the network in the Decode layout, so
// Decode(w).Flatten() == w index for index.
func (n *Network) Flatten() []float64 {
	out := make([]float64, 0, WeightCount)
	for i := 0; i < Inputs; i++ {
		out = append(out, n.w1[i][:]...)
	}
	out = append(out, n.b1[:]...)
	for j := 0; j < Hidden; j++ {
		out = append(out, n.w2[j][:]...)
	}
	out = append(out, n.b2[:]...)
	return out
}

// Forward runs inference on a board encoded as {+1, -1, 0} per cell and
// returns one raw score per cell.
func (n *Network) Forward(input [Inputs]float64) [Outputs]float64 {
	var hidden [Hidden]float64
	for j := 0; j < Hidden; j++ {
		sum := n.b1[j]
		for i := 0; i < Inputs; i++ {
			sum += input[i] * n.w1[i][j]
		}
		hidden[j] = math.Tanh(sum)
	}

	var out [Outputs]float64
	for k := 0; k < Outputs; k++ {
		sum := n.b2[k]
		for j := 0; j < Hidden; j++ {
			sum += hidden[j] * n.w2[j][k]
		}
		out[k] = sum
	}
	return out
}

// SelectMove masks the scores of occupied cells and returns the arg-max
// among the empty ones, lowest index winning ties. ok is false when the
// board has no empty cell; the caller decides what that means.
func (n *Network) SelectMove(input [Inputs]float64) (int, bool) {
	scores := n.Forward(input)
	best := -1
	bestScore := math.Inf(-1)
	for i, score := range scores {
		if input[i] != 0 {
			continue
		}
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// Policy adapts a Network to turn-based play against other players.
type Policy struct {
	net *Network
}

func NewPolicy(net *Network) *Policy {
	return &Policy{net: net}
}

// ChooseMove selects the network's move for mark on the given board.
func (p *Policy) ChooseMove(b *game.Board, mark game.Mark) (int, bool) {
	return p.net.SelectMove(b.Input(mark))
}
