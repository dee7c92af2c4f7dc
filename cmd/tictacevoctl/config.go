package main

import (
	"fmt"

	"gopkg.in/ini.v1"

	api "tictacevo/pkg/tictacevo"
)

// INI layout mirrors the training request: [run] holds identity and
// execution settings, [ga] the genetic operators, [trainer] the minimax
// opponent settings. Flags set on the command line win over file values.
type runSection struct {
	RunID   string `ini:"run_id"`
	Seed    int64  `ini:"seed"`
	Workers int    `ini:"workers"`
}

type gaSection struct {
	Population           int     `ini:"population"`
	Generations          int     `ini:"generations"`
	EliteCount           int     `ini:"elite_count"`
	TournamentSize       int     `ini:"tournament_size"`
	CrossoverRate        float64 `ini:"crossover_rate"`
	MutationRate         float64 `ini:"mutation_rate"`
	MutationSigma        float64 `ini:"mutation_sigma"`
	InitRange            float64 `ini:"init_range"`
	ConvergenceWindow    int     `ini:"convergence_window"`
	ConvergenceThreshold float64 `ini:"convergence_threshold"`
}

type trainerSection struct {
	GamesPerEval   int     `ini:"games_per_eval"`
	Difficulty     string  `ini:"difficulty"`
	SwitchFraction float64 `ini:"switch_fraction"`
}

func loadRunRequestFromConfig(path string) (api.RunRequest, error) {
	// Default parsing strips inline ';' and '#' comments from values.
	cfg, err := ini.Load(path)
	if err != nil {
		return api.RunRequest{}, fmt.Errorf("failed to load config file '%s': %w", path, err)
	}

	var run runSection
	if err := cfg.Section("run").MapTo(&run); err != nil {
		return api.RunRequest{}, fmt.Errorf("failed to map [run] section: %w", err)
	}
	var ga gaSection
	if err := cfg.Section("ga").MapTo(&ga); err != nil {
		return api.RunRequest{}, fmt.Errorf("failed to map [ga] section: %w", err)
	}
	var trainer trainerSection
	if err := cfg.Section("trainer").MapTo(&trainer); err != nil {
		return api.RunRequest{}, fmt.Errorf("failed to map [trainer] section: %w", err)
	}

	return api.RunRequest{
		RunID:                run.RunID,
		Seed:                 run.Seed,
		Workers:              run.Workers,
		Population:           ga.Population,
		Generations:          ga.Generations,
		EliteCount:           ga.EliteCount,
		TournamentSize:       ga.TournamentSize,
		CrossoverRate:        ga.CrossoverRate,
		MutationRate:         ga.MutationRate,
		MutationSigma:        ga.MutationSigma,
		InitRange:            ga.InitRange,
		ConvergenceWindow:    ga.ConvergenceWindow,
		ConvergenceThreshold: ga.ConvergenceThreshold,
		GamesPerEval:         trainer.GamesPerEval,
		Difficulty:           trainer.Difficulty,
		SwitchFraction:       trainer.SwitchFraction,
	}, nil
}

func loadOrDefaultRunRequest(path string) (api.RunRequest, error) {
	if path == "" {
		return api.RunRequest{}, nil
	}
	return loadRunRequestFromConfig(path)
}

func overrideFromFlags(req *api.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "elites":
			req.EliteCount = v.(int)
		case "tournament":
			req.TournamentSize = v.(int)
		case "crossover-rate":
			req.CrossoverRate = v.(float64)
		case "mutation-rate":
			req.MutationRate = v.(float64)
		case "mutation-sigma":
			req.MutationSigma = v.(float64)
		case "init-range":
			req.InitRange = v.(float64)
		case "convergence-window":
			req.ConvergenceWindow = v.(int)
		case "convergence-threshold":
			req.ConvergenceThreshold = v.(float64)
		case "games":
			req.GamesPerEval = v.(int)
		case "difficulty":
			req.Difficulty = v.(string)
		case "switch-fraction":
			req.SwitchFraction = v.(float64)
		}
	}
	return nil
}
