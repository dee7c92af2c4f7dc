// Package tictacevo is the public client API. It wires the evolution engine,
// the minimax trainer scape, persistence and run artifacts into the
// operations the CLI exposes.
package tictacevo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tictacevo/internal/evo"
	weightio "tictacevo/internal/io"
	"tictacevo/internal/minimax"
	"tictacevo/internal/model"
	"tictacevo/internal/nn"
	"tictacevo/internal/scape"
	"tictacevo/internal/stats"
	"tictacevo/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultDBPath        = "tictacevo.db"

	scapeName = "tictactoe"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
}

type Client struct {
	store         storage.Store
	benchmarksDir string
}

// RunRequest configures a training run. Zero values fall back to the
// defaults applied in Run. CrossoverRate and MutationRate accept a negative
// value to request a rate of exactly 0, which zero itself cannot express.
type RunRequest struct {
	RunID                string
	Seed                 int64
	Population           int
	Generations          int
	EliteCount           int
	TournamentSize       int
	GamesPerEval         int
	CrossoverRate        float64
	MutationRate         float64
	MutationSigma        float64
	InitRange            float64
	Difficulty           string
	SwitchFraction       float64
	Workers              int
	ConvergenceWindow    int
	ConvergenceThreshold float64
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []float64
	FinalBestFitness float64
	GenerationsRun   int
	Converged        bool
	TotalGames       int
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Scape            string
	Seed             int64
	Population       int
	Generations      int
	GenerationsRun   int
	Converged        bool
	FinalBestFitness float64
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportWeightsRequest struct {
	RunID  string
	Latest bool
	Path   string
}

type ExportWeightsSummary struct {
	RunID string
	Path  string
}

type AccuracyRequest struct {
	RunID       string
	Latest      bool
	WeightsPath string
	Games       int
	Difficulty  string
	Seed        int64
}

type AccuracySummary struct {
	RunID      string
	Difficulty string
	Games      int
	Wins       int
	Draws      int
	Losses     int
	Invalid    int
	Accuracy   float64
	Fitness    float64
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Population <= 0 {
		req.Population = 20
	}
	if req.Generations <= 0 {
		req.Generations = 20
	}
	if req.EliteCount <= 0 {
		req.EliteCount = 2
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = 5
	}
	if req.GamesPerEval <= 0 {
		req.GamesPerEval = 5
	}
	// Zero rates mean "use the default"; a negative rate disables the
	// operator, since rate 0 is a meaningful GA setting in its own right.
	if req.CrossoverRate < 0 {
		req.CrossoverRate = 0
	} else if req.CrossoverRate == 0 {
		req.CrossoverRate = 0.8
	}
	if req.MutationRate < 0 {
		req.MutationRate = 0
	} else if req.MutationRate == 0 {
		req.MutationRate = 0.05
	}
	if req.MutationSigma <= 0 {
		req.MutationSigma = 0.2
	}
	if req.InitRange <= 0 {
		req.InitRange = 1.0
	}
	if req.Difficulty == "" {
		req.Difficulty = "phased"
	}
	if req.SwitchFraction <= 0 {
		req.SwitchFraction = 0.25
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}

	schedule, err := scheduleFromName(req.Difficulty, req.SwitchFraction)
	if err != nil {
		return RunSummary{}, err
	}

	engine, err := evo.NewEngine(evo.Config{
		WeightCount:          nn.WeightCount,
		PopulationSize:       req.Population,
		Generations:          req.Generations,
		EliteCount:           req.EliteCount,
		TournamentSize:       req.TournamentSize,
		CrossoverRate:        req.CrossoverRate,
		InitRange:            req.InitRange,
		Workers:              req.Workers,
		Seed:                 req.Seed,
		Selector:             evo.TournamentSelector{TournamentSize: req.TournamentSize},
		Crossover:            evo.ArithmeticCrossover{},
		Mutation:             evo.GaussianMutation{Rate: req.MutationRate, Sigma: req.MutationSigma},
		Schedule:             schedule,
		ConvergenceWindow:    req.ConvergenceWindow,
		ConvergenceThreshold: req.ConvergenceThreshold,
	}, &scape.PolicyEvaluator{Games: req.GamesPerEval})
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.store.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	bestByGeneration := make([]float64, 0, len(result.History))
	totalGames := 0
	for _, diag := range result.History {
		bestByGeneration = append(bestByGeneration, diag.BestFitness)
		totalGames += diag.Games
	}

	now := time.Now().UTC()
	versioned := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
	run := model.RunRecord{
		VersionedRecord: versioned,
		ID:              req.RunID,
		Scape:           scapeName,
		Seed:            req.Seed,
		PopulationSize:  req.Population,
		Generations:     req.Generations,
		GenerationsRun:  result.GenerationsRun,
		Converged:       result.Converged,
		BestFitness:     result.BestFitness,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	champion := model.Individual{
		VersionedRecord: versioned,
		ID:              fmt.Sprintf("%s-best", req.RunID),
		Weights:         result.BestWeights,
		Fitness:         result.BestFitness,
	}
	if err := c.store.SaveBestIndividual(ctx, req.RunID, champion); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, req.RunID, bestByGeneration); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, req.RunID, result.History); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:                req.RunID,
			Scape:                scapeName,
			Seed:                 req.Seed,
			PopulationSize:       req.Population,
			Generations:          req.Generations,
			EliteCount:           req.EliteCount,
			TournamentSize:       req.TournamentSize,
			GamesPerEval:         req.GamesPerEval,
			CrossoverRate:        req.CrossoverRate,
			MutationRate:         req.MutationRate,
			MutationSigma:        req.MutationSigma,
			InitRange:            req.InitRange,
			Difficulty:           req.Difficulty,
			SwitchFraction:       req.SwitchFraction,
			Workers:              req.Workers,
			ConvergenceWindow:    req.ConvergenceWindow,
			ConvergenceThreshold: req.ConvergenceThreshold,
		},
		BestByGeneration: bestByGeneration,
		Diagnostics:      result.History,
		BestWeights:      result.BestWeights,
		FinalBestFitness: result.BestFitness,
		Converged:        result.Converged,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            req.RunID,
		Scape:            scapeName,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		GenerationsRun:   result.GenerationsRun,
		Seed:             req.Seed,
		Workers:          req.Workers,
		Converged:        result.Converged,
		FinalBestFitness: result.BestFitness,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            req.RunID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: bestByGeneration,
		FinalBestFitness: result.BestFitness,
		GenerationsRun:   result.GenerationsRun,
		Converged:        result.Converged,
		TotalGames:       totalGames,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		// Fall back to the artifact index so memory-store sessions can
		// still list previous runs.
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		out := make([]RunItem, 0, len(entries))
		for _, e := range entries {
			if len(out) == req.Limit {
				break
			}
			out = append(out, RunItem{
				RunID:            e.RunID,
				CreatedAtUTC:     e.CreatedAtUTC,
				Scape:            e.Scape,
				Seed:             e.Seed,
				Population:       e.PopulationSize,
				Generations:      e.Generations,
				GenerationsRun:   e.GenerationsRun,
				Converged:        e.Converged,
				FinalBestFitness: e.FinalBestFitness,
			})
		}
		return out, nil
	}

	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:            run.ID,
			CreatedAtUTC:     run.CreatedAtUTC,
			Scape:            run.Scape,
			Seed:             run.Seed,
			Population:       run.PopulationSize,
			Generations:      run.Generations,
			GenerationsRun:   run.GenerationsRun,
			Converged:        run.Converged,
			FinalBestFitness: run.BestFitness,
		})
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, ok, err = stats.ReadFitnessSeries(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
		}
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		diagnostics, ok, err = stats.ReadDiagnostics(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
		}
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

func (c *Client) ExportWeights(ctx context.Context, req ExportWeightsRequest) (ExportWeightsSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportWeightsSummary{}, err
	}

	weights, err := c.loadChampionWeights(ctx, runID)
	if err != nil {
		return ExportWeightsSummary{}, err
	}

	path := req.Path
	if path == "" {
		path = fmt.Sprintf("weights-%s.txt", runID)
	}
	if err := weightio.WriteWeights(path, weights); err != nil {
		return ExportWeightsSummary{}, err
	}
	return ExportWeightsSummary{RunID: runID, Path: filepath.Clean(path)}, nil
}

// Accuracy replays a champion against the minimax trainer and reports how
// often it wins or draws. The champion comes from a weights file when
// WeightsPath is set, otherwise from the stored run.
func (c *Client) Accuracy(ctx context.Context, req AccuracyRequest) (AccuracySummary, error) {
	if req.Games <= 0 {
		req.Games = 100
	}
	if req.Difficulty == "" {
		req.Difficulty = string(minimax.Hard)
	}
	difficulty, err := minimax.ParseDifficulty(req.Difficulty)
	if err != nil {
		return AccuracySummary{}, err
	}

	var weights []float64
	var runID string
	if req.WeightsPath != "" {
		weights, err = weightio.ReadWeights(req.WeightsPath)
		if err != nil {
			return AccuracySummary{}, err
		}
	} else {
		runID, err = c.resolveRunID(ctx, req.RunID, req.Latest)
		if err != nil {
			return AccuracySummary{}, err
		}
		weights, err = c.loadChampionWeights(ctx, runID)
		if err != nil {
			return AccuracySummary{}, err
		}
	}

	evaluator := scape.PolicyEvaluator{Games: req.Games}
	rng := rand.New(rand.NewSource(req.Seed))
	fitness, trace, err := evaluator.Evaluate(ctx, weights, difficulty, rng)
	if err != nil {
		return AccuracySummary{}, err
	}

	summary := AccuracySummary{
		RunID:      runID,
		Difficulty: string(difficulty),
		Games:      traceCount(trace, "games"),
		Wins:       traceCount(trace, "wins"),
		Draws:      traceCount(trace, "draws"),
		Losses:     traceCount(trace, "losses"),
		Invalid:    traceCount(trace, "invalid"),
		Fitness:    fitness,
	}
	if summary.Games > 0 {
		summary.Accuracy = float64(summary.Wins+summary.Draws) / float64(summary.Games)
	}
	return summary, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if err := c.store.Init(ctx); err != nil {
		return "", err
	}
	if latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return "", err
		}
		if len(runs) > 0 {
			return runs[0].ID, nil
		}
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("no runs available")
		}
		return entries[0].RunID, nil
	}
	if runID == "" {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}

func (c *Client) loadChampionWeights(ctx context.Context, runID string) ([]float64, error) {
	individual, ok, err := c.store.GetBestIndividual(ctx, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		return individual.Weights, nil
	}
	weights, ok, err := stats.ReadBestWeights(c.benchmarksDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("best weights not found for run id: %s", runID)
	}
	return weights, nil
}

func scheduleFromName(name string, switchFraction float64) (evo.DifficultySchedule, error) {
	switch name {
	case "phased":
		return evo.PhasedDifficulty{SwitchFraction: switchFraction}, nil
	case string(minimax.Medium), string(minimax.Hard):
		difficulty, err := minimax.ParseDifficulty(name)
		if err != nil {
			return nil, err
		}
		return evo.ConstDifficulty{Difficulty: difficulty}, nil
	default:
		return nil, fmt.Errorf("unsupported difficulty: %s", name)
	}
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
