package scape

import (
	"context"

	"tictacevo/internal/game"
)

type Fitness float64

type Trace map[string]any

// Player is the single capability every game participant implements:
// neural policies, the minimax trainer, and any interactive adapter a
// frontend might add. ok=false means no move is available.
type Player interface {
	ChooseMove(b *game.Board, mark game.Mark) (int, bool)
}

// Scape is an environment that scores a player.
type Scape interface {
	Name() string
	Evaluate(ctx context.Context, player Player) (Fitness, Trace, error)
}
