package minimax

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"tictacevo/internal/game"
)

// Difficulty controls how often the engine searches versus plays randomly.
type Difficulty string

const (
	// Medium searches with probability 0.5 and otherwise plays a uniformly
	// random legal move.
	Medium Difficulty = "medium"
	// Hard always searches the full game tree.
	Hard Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case string(Medium):
		return Medium, nil
	case string(Hard):
		return Hard, nil
	default:
		return "", fmt.Errorf("unsupported difficulty: %s", s)
	}
}

const mediumSearchProbability = 0.5

// Engine is the exhaustive minimax trainer. The search runs the full
// depth-9 tree; there is no pruning. Among equally optimal moves the engine
// keeps the first one in increasing cell-index order, so hard mode is fully
// deterministic.
type Engine struct {
	difficulty Difficulty
	rng        *rand.Rand
}

// New builds an engine. rng is only consulted by the medium-mode coin flip
// and the random-move fallback; it may be nil for Hard.
func New(difficulty Difficulty, rng *rand.Rand) *Engine {
	return &Engine{difficulty: difficulty, rng: rng}
}

func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// ChooseMove returns the move for mark on the given non-terminal position.
// ok is false only when the board has no legal moves; callers must treat
// that as "no move available", not an error.
func (e *Engine) ChooseMove(b *game.Board, mark game.Mark) (int, bool) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return 0, false
	}
	if e.difficulty == Medium && e.rng.Float64() >= mediumSearchProbability {
		return moves[e.rng.Intn(len(moves))], true
	}
	move, _ := search(b, mark, mark)
	return move, true
}

// search explores every legal continuation and returns the optimal move for
// the side to move together with the root-perspective score. Terminal wins
// score +-(remaining legal moves + 1) so faster wins and slower losses are
// preferred; draws score 0. Each Apply is undone on the same iteration,
// keeping the board intact across branches.
func search(b *game.Board, toMove, root game.Mark) (int, int) {
	maximizing := toMove == root
	bestMove := -1
	bestScore := math.MaxInt
	if maximizing {
		bestScore = math.MinInt
	}

	for move := 0; move < game.Cells; move++ {
		if !b.Apply(move, toMove) {
			continue
		}
		var score int
		switch b.Outcome() {
		case game.Draw:
			score = 0
		case game.InProgress:
			_, score = search(b, toMove.Other(), root)
		default:
			// toMove just completed a line.
			margin := b.LegalMoveCount() + 1
			if maximizing {
				score = margin
			} else {
				score = -margin
			}
		}
		b.Undo(move)

		if maximizing {
			if score > bestScore {
				bestMove, bestScore = move, score
			}
		} else {
			if score < bestScore {
				bestMove, bestScore = move, score
			}
		}
	}
	return bestMove, bestScore
}
