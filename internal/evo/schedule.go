package evo

import "tictacevo/internal/minimax"

// DifficultySchedule decides the trainer difficulty for each generation,
// letting early generations learn against a partially random adversary.
type DifficultySchedule interface {
	Name() string
	DifficultyFor(generation, totalGenerations int) minimax.Difficulty
}

// ConstDifficulty keeps one difficulty for the whole run.
type ConstDifficulty struct {
	Difficulty minimax.Difficulty
}

func (s ConstDifficulty) Name() string {
	return "const:" + string(s.Difficulty)
}

func (s ConstDifficulty) DifficultyFor(int, int) minimax.Difficulty {
	return s.Difficulty
}

// PhasedDifficulty starts at medium and switches to hard once the run
// passes SwitchFraction of the generation budget (default 0.25).
type PhasedDifficulty struct {
	SwitchFraction float64
}

func (PhasedDifficulty) Name() string {
	return "phased"
}

func (s PhasedDifficulty) DifficultyFor(generation, totalGenerations int) minimax.Difficulty {
	fraction := s.SwitchFraction
	if fraction <= 0 {
		fraction = 0.25
	}
	if float64(generation) < fraction*float64(totalGenerations) {
		return minimax.Medium
	}
	return minimax.Hard
}
