package scape

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"tictacevo/internal/game"
	"tictacevo/internal/minimax"
	"tictacevo/internal/nn"
)

// Per-game fitness contributions. An illegal or absent policy move stops
// the game immediately with the largest penalty; retrying would let a broken
// policy fish for legal moves and mask the fitness signal.
const (
	WinScore         = 1.0
	DrawScore        = 0.25
	LossScore        = -0.5
	InvalidMoveScore = -1.0
)

// Result classifies one simulated game from the evaluated player's side.
type Result string

const (
	ResultWin     Result = "win"
	ResultDraw    Result = "draw"
	ResultLoss    Result = "loss"
	ResultInvalid Result = "invalid"
)

func (r Result) Score() float64 {
	switch r {
	case ResultWin:
		return WinScore
	case ResultDraw:
		return DrawScore
	case ResultLoss:
		return LossScore
	default:
		return InvalidMoveScore
	}
}

// TicTacToeScape pits the evaluated player, always as X and always moving
// first, against an opponent over Games games. Fitness is the mean of the
// per-game scores so evaluations stay comparable across game counts.
type TicTacToeScape struct {
	Opponent Player
	Games    int
}

func (TicTacToeScape) Name() string {
	return "tictactoe"
}

func (s TicTacToeScape) Evaluate(ctx context.Context, player Player) (Fitness, Trace, error) {
	if s.Opponent == nil {
		return 0, nil, errors.New("opponent is required")
	}
	games := s.Games
	if games <= 0 {
		games = 1
	}

	total := 0.0
	var wins, draws, losses, invalid int
	for g := 0; g < games; g++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		result, err := s.playGame(player)
		if err != nil {
			return 0, nil, err
		}
		total += result.Score()
		switch result {
		case ResultWin:
			wins++
		case ResultDraw:
			draws++
		case ResultLoss:
			losses++
		case ResultInvalid:
			invalid++
		}
	}

	fitness := total / float64(games)
	return Fitness(fitness), Trace{
		"games":   games,
		"wins":    wins,
		"draws":   draws,
		"losses":  losses,
		"invalid": invalid,
	}, nil
}

func (s TicTacToeScape) playGame(player Player) (Result, error) {
	b := game.NewBoard()
	for {
		move, ok := player.ChooseMove(b, game.X)
		if !ok || !b.Apply(move, game.X) {
			return ResultInvalid, nil
		}
		switch b.Outcome() {
		case game.WinX:
			return ResultWin, nil
		case game.Draw:
			return ResultDraw, nil
		}

		reply, ok := s.Opponent.ChooseMove(b, game.O)
		if !ok || !b.Apply(reply, game.O) {
			return "", fmt.Errorf("opponent returned unplayable move %d", reply)
		}
		switch b.Outcome() {
		case game.WinO:
			return ResultLoss, nil
		case game.Draw:
			return ResultDraw, nil
		}
	}
}

// PolicyEvaluator decodes a weight vector into a policy and scores it
// against a minimax trainer of the requested difficulty. It is the fitness
// function of the evolution engine. Safe for concurrent use as long as each
// call gets its own rng stream.
type PolicyEvaluator struct {
	Games int
}

func (e PolicyEvaluator) Evaluate(ctx context.Context, weights []float64, difficulty minimax.Difficulty, rng *rand.Rand) (float64, Trace, error) {
	net, err := nn.Decode(weights)
	if err != nil {
		return 0, nil, err
	}
	s := TicTacToeScape{
		Opponent: minimax.New(difficulty, rng),
		Games:    e.Games,
	}
	fitness, trace, err := s.Evaluate(ctx, nn.NewPolicy(net))
	return float64(fitness), trace, err
}
