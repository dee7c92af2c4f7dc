package evo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"tictacevo/internal/minimax"
	"tictacevo/internal/model"
	"tictacevo/internal/scape"
)

// Evaluator scores one weight vector against a trainer of the given
// difficulty. Implementations must be safe for concurrent use provided each
// call receives its own rng stream.
type Evaluator interface {
	Evaluate(ctx context.Context, weights []float64, difficulty minimax.Difficulty, rng *rand.Rand) (float64, scape.Trace, error)
}

// Config drives one evolution run. It is validated once in NewEngine and
// never mutated afterwards; a degenerate configuration fails before any
// generation executes.
type Config struct {
	WeightCount    int
	PopulationSize int
	Generations    int
	EliteCount     int
	TournamentSize int
	CrossoverRate  float64
	InitRange      float64
	Workers        int
	Seed           int64

	Selector  Selector
	Crossover Crossover
	Mutation  Mutation
	Schedule  DifficultySchedule

	// ConvergenceWindow 0 disables the convergence stop; otherwise the run
	// stops once best fitness moves by at most ConvergenceThreshold across
	// the trailing window.
	ConvergenceWindow    int
	ConvergenceThreshold float64
}

// RunResult reports a completed run. History carries one diagnostics entry
// per executed generation; presentation layers consume it and BestWeights
// only.
type RunResult struct {
	BestWeights     []float64
	BestFitness     float64
	History         []model.GenerationDiagnostics
	GenerationsRun  int
	Converged       bool
	FinalPopulation []model.Individual
}

// Engine owns the active population exclusively; generations run strictly
// in sequence even when evaluation is parallel.
type Engine struct {
	cfg       Config
	evaluator Evaluator
	rng       *rand.Rand
}

func NewEngine(cfg Config, evaluator Evaluator) (*Engine, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if cfg.WeightCount <= 0 {
		return nil, fmt.Errorf("weight count must be > 0")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.EliteCount <= 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [1, population size]")
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("crossover rate must be in [0, 1]")
	}
	if cfg.Mutation == nil {
		return nil, fmt.Errorf("mutation operator is required")
	}
	if cfg.ConvergenceWindow < 0 {
		return nil, fmt.Errorf("convergence window must be >= 0")
	}
	if cfg.ConvergenceThreshold < 0 {
		return nil, fmt.Errorf("convergence threshold must be >= 0")
	}
	if cfg.InitRange <= 0 {
		cfg.InitRange = 1.0
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Selector == nil {
		cfg.Selector = TournamentSelector{TournamentSize: cfg.TournamentSize}
	}
	if cfg.Crossover == nil {
		cfg.Crossover = ArithmeticCrossover{}
	}
	if cfg.Schedule == nil {
		cfg.Schedule = ConstDifficulty{Difficulty: minimax.Hard}
	}

	return &Engine{
		cfg:       cfg,
		evaluator: evaluator,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes generations until the budget is exhausted or the best
// fitness converges, and returns the best individual seen across the run.
func (e *Engine) Run(ctx context.Context) (RunResult, error) {
	population := e.initialPopulation()

	history := make([]model.GenerationDiagnostics, 0, e.cfg.Generations)
	best := model.Individual{Fitness: model.FitnessUnknown}
	converged := false
	generationsRun := 0

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		difficulty := e.cfg.Schedule.DifficultyFor(gen, e.cfg.Generations)
		scored, traces, err := e.evaluatePopulation(ctx, population, gen, difficulty)
		if err != nil {
			return RunResult{}, err
		}

		// Descending by fitness; the stable sort breaks ties by original
		// population index.
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Fitness > scored[j].Fitness
		})

		history = append(history, summarizeGeneration(scored, traces, gen+1, difficulty))
		if !best.Evaluated() || scored[0].Fitness > best.Fitness {
			best = scored[0].Clone()
		}
		generationsRun = gen + 1

		if e.converged(history) {
			converged = true
			population = scored
			break
		}
		if gen == e.cfg.Generations-1 {
			population = scored
			break
		}

		population, err = e.nextGeneration(scored, gen)
		if err != nil {
			return RunResult{}, err
		}
	}

	return RunResult{
		BestWeights:     append([]float64(nil), best.Weights...),
		BestFitness:     best.Fitness,
		History:         history,
		GenerationsRun:  generationsRun,
		Converged:       converged,
		FinalPopulation: population,
	}, nil
}

func (e *Engine) initialPopulation() []model.Individual {
	population := make([]model.Individual, e.cfg.PopulationSize)
	for i := range population {
		weights := make([]float64, e.cfg.WeightCount)
		for w := range weights {
			weights[w] = (e.rng.Float64()*2 - 1) * e.cfg.InitRange
		}
		population[i] = model.Individual{
			ID:      fmt.Sprintf("ind-g0-i%d", i),
			Weights: weights,
			Fitness: model.FitnessUnknown,
		}
	}
	return population
}

func (e *Engine) evaluatePopulation(ctx context.Context, population []model.Individual, generation int, difficulty minimax.Difficulty) ([]model.Individual, []scape.Trace, error) {
	type job struct {
		idx int
	}
	type result struct {
		idx     int
		fitness float64
		trace   scape.Trace
		err     error
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	workerCount := e.cfg.Workers
	if workerCount > len(population) {
		workerCount = len(population)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				rng := rand.New(rand.NewSource(e.evalSeed(generation, j.idx)))
				fitness, trace, err := e.evaluator.Evaluate(ctx, population[j.idx].Weights, difficulty, rng)
				results <- result{idx: j.idx, fitness: fitness, trace: trace, err: err}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i}
	}
	close(jobs)

	wg.Wait()
	close(results)

	scored := make([]model.Individual, len(population))
	copy(scored, population)
	traces := make([]scape.Trace, len(population))
	for res := range results {
		if res.err != nil {
			return nil, nil, res.err
		}
		scored[res.idx].Fitness = res.fitness
		traces[res.idx] = res.trace
	}
	return scored, traces, nil
}

// evalSeed derives an independent, reproducible rng stream per individual
// evaluation so runs stay deterministic under any worker count.
func (e *Engine) evalSeed(generation, index int) int64 {
	return e.cfg.Seed + int64(generation)*1_000_003 + int64(index)
}

func (e *Engine) nextGeneration(ranked []model.Individual, generation int) ([]model.Individual, error) {
	next := make([]model.Individual, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.EliteCount; i++ {
		next = append(next, ranked[i].Clone())
	}

	for len(next) < e.cfg.PopulationSize {
		parent1, err := e.cfg.Selector.PickParent(e.rng, ranked)
		if err != nil {
			return nil, err
		}
		parent2, err := e.cfg.Selector.PickParent(e.rng, ranked)
		if err != nil {
			return nil, err
		}

		var child1, child2 []float64
		if e.rng.Float64() < e.cfg.CrossoverRate {
			child1, child2 = e.cfg.Crossover.Pair(e.rng, parent1.Weights, parent2.Weights)
		} else {
			child1 = append([]float64(nil), parent1.Weights...)
			child2 = append([]float64(nil), parent2.Weights...)
		}

		next = append(next, model.Individual{
			ID:      fmt.Sprintf("ind-g%d-i%d", generation+1, len(next)),
			Weights: e.cfg.Mutation.Apply(e.rng, child1),
			Fitness: model.FitnessUnknown,
		})
		if len(next) < e.cfg.PopulationSize {
			next = append(next, model.Individual{
				ID:      fmt.Sprintf("ind-g%d-i%d", generation+1, len(next)),
				Weights: e.cfg.Mutation.Apply(e.rng, child2),
				Fitness: model.FitnessUnknown,
			})
		}
	}
	return next, nil
}

func (e *Engine) converged(history []model.GenerationDiagnostics) bool {
	window := e.cfg.ConvergenceWindow
	if window <= 0 || len(history) < window {
		return false
	}
	tail := history[len(history)-window:]
	lo, hi := tail[0].BestFitness, tail[0].BestFitness
	for _, entry := range tail[1:] {
		if entry.BestFitness < lo {
			lo = entry.BestFitness
		}
		if entry.BestFitness > hi {
			hi = entry.BestFitness
		}
	}
	return hi-lo <= e.cfg.ConvergenceThreshold
}

func summarizeGeneration(scored []model.Individual, traces []scape.Trace, generation int, difficulty minimax.Difficulty) model.GenerationDiagnostics {
	diag := model.GenerationDiagnostics{
		Generation: generation,
		Difficulty: string(difficulty),
	}
	if len(scored) == 0 {
		return diag
	}

	total := 0.0
	diag.BestFitness = scored[0].Fitness
	diag.MinFitness = scored[0].Fitness
	for _, individual := range scored {
		total += individual.Fitness
		if individual.Fitness < diag.MinFitness {
			diag.MinFitness = individual.Fitness
		}
	}
	diag.MeanFitness = total / float64(len(scored))

	for _, trace := range traces {
		diag.Games += traceCount(trace, "games")
		diag.Wins += traceCount(trace, "wins")
		diag.Draws += traceCount(trace, "draws")
		diag.Losses += traceCount(trace, "losses")
		diag.InvalidMoves += traceCount(trace, "invalid")
	}
	if diag.Games > 0 {
		diag.Accuracy = float64(diag.Wins+diag.Draws) / float64(diag.Games)
	}
	return diag
}

func traceCount(trace scape.Trace, key string) int {
	if trace == nil {
		return 0
	}
	if n, ok := trace[key].(int); ok {
		return n
	}
	return 0
}
