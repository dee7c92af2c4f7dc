package evo

import (
	"errors"
	"math/rand"

	"tictacevo/internal/model"
)

// Selector chooses parents from a population ranked descending by fitness.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []model.Individual) (model.Individual, error)
}

// TournamentSelector samples TournamentSize individuals uniformly without
// replacement and keeps the fittest of the sample.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []model.Individual) (model.Individual, error) {
	if rng == nil {
		return model.Individual{}, errors.New("random source is required")
	}
	if len(ranked) == 0 {
		return model.Individual{}, errors.New("ranked population is empty")
	}

	size := s.TournamentSize
	if size <= 0 {
		size = 3
	}
	if size > len(ranked) {
		size = len(ranked)
	}

	best := -1
	for _, idx := range rng.Perm(len(ranked))[:size] {
		if best == -1 || ranked[idx].Fitness > ranked[best].Fitness {
			best = idx
		}
	}
	return ranked[best], nil
}

// EliteSelector picks uniformly from the top EliteCount of the ranking.
type EliteSelector struct {
	EliteCount int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) PickParent(rng *rand.Rand, ranked []model.Individual) (model.Individual, error) {
	if rng == nil {
		return model.Individual{}, errors.New("random source is required")
	}
	if len(ranked) == 0 {
		return model.Individual{}, errors.New("ranked population is empty")
	}

	count := s.EliteCount
	if count <= 0 || count > len(ranked) {
		count = len(ranked)
	}
	return ranked[rng.Intn(count)], nil
}
