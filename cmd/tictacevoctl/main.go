package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	api "tictacevo/pkg/tictacevo"
)

const benchmarksDir = "benchmarks"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "accuracy":
		return runAccuracy(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func newClient(storeKind, dbPath string) (*api.Client, error) {
	return api.New(api.Options{
		StoreKind:     storeKind,
		DBPath:        dbPath,
		BenchmarksDir: benchmarksDir,
	})
}

func addStoreFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "tictacevo.db", "sqlite database path")
	return storeKind, dbPath
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config INI path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	population := fs.Int("pop", 20, "population size")
	generations := fs.Int("gens", 20, "generation count")
	elites := fs.Int("elites", 2, "individuals copied unchanged each generation")
	tournament := fs.Int("tournament", 5, "tournament sample size for parent selection")
	crossoverRate := fs.Float64("crossover-rate", 0.8, "probability a parent pair recombines")
	mutationRate := fs.Float64("mutation-rate", 0.05, "per-weight mutation probability")
	mutationSigma := fs.Float64("mutation-sigma", 0.2, "mutation noise standard deviation")
	initRange := fs.Float64("init-range", 1.0, "initial weight range [-r, r]")
	convergenceWindow := fs.Int("convergence-window", 0, "trailing generations for the convergence stop (0 disables)")
	convergenceThreshold := fs.Float64("convergence-threshold", 0.0, "max best-fitness movement inside the window")
	games := fs.Int("games", 5, "games played per evaluation")
	difficulty := fs.String("difficulty", "phased", "trainer difficulty: medium|hard|phased")
	switchFraction := fs.Float64("switch-fraction", 0.25, "generation fraction at which phased difficulty switches to hard")
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = api.RunRequest{
			RunID:                *runID,
			Seed:                 *seed,
			Workers:              *workers,
			Population:           *population,
			Generations:          *generations,
			EliteCount:           *elites,
			TournamentSize:       *tournament,
			CrossoverRate:        *crossoverRate,
			MutationRate:         *mutationRate,
			MutationSigma:        *mutationSigma,
			InitRange:            *initRange,
			ConvergenceWindow:    *convergenceWindow,
			ConvergenceThreshold: *convergenceThreshold,
			GamesPerEval:         *games,
			Difficulty:           *difficulty,
			SwitchFraction:       *switchFraction,
		}
	} else {
		err := overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":                *runID,
			"seed":                  *seed,
			"workers":               *workers,
			"pop":                   *population,
			"gens":                  *generations,
			"elites":                *elites,
			"tournament":            *tournament,
			"crossover-rate":        *crossoverRate,
			"mutation-rate":         *mutationRate,
			"mutation-sigma":        *mutationSigma,
			"init-range":            *initRange,
			"convergence-window":    *convergenceWindow,
			"convergence-threshold": *convergenceThreshold,
			"games":                 *games,
			"difficulty":            *difficulty,
			"switch-fraction":       *switchFraction,
		})
		if err != nil {
			return err
		}
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run_id=%s generations_run=%d converged=%t final_best_fitness=%.6f games_played=%s artifacts=%s\n",
		summary.RunID,
		summary.GenerationsRun,
		summary.Converged,
		summary.FinalBestFitness,
		humanize.Comma(int64(summary.TotalGames)),
		summary.ArtifactsDir,
	)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, api.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		fmt.Printf("run_id=%s created_at=%s scape=%s seed=%d pop=%d gens=%d/%d converged=%t final_best_fitness=%.6f\n",
			r.RunID,
			r.CreatedAtUTC,
			r.Scape,
			r.Seed,
			r.Population,
			r.GenerationsRun,
			r.Generations,
			r.Converged,
			r.FinalBestFitness,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, api.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, best := range history {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, api.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("generation=%d difficulty=%s best=%.6f mean=%.6f min=%.6f games=%s wins=%d draws=%d losses=%d invalid=%d accuracy=%.4f\n",
			d.Generation,
			d.Difficulty,
			d.BestFitness,
			d.MeanFitness,
			d.MinFitness,
			humanize.Comma(int64(d.Games)),
			d.Wins,
			d.Draws,
			d.Losses,
			d.InvalidMoves,
			d.Accuracy,
		)
	}
	return nil
}

func runAccuracy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("accuracy", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "measure the most recent run's champion")
	weightsPath := fs.String("weights", "", "measure a weights file instead of a stored run")
	games := fs.Int("games", 100, "games to play against the trainer")
	difficulty := fs.String("difficulty", "hard", "trainer difficulty: medium|hard")
	seed := fs.Int64("seed", 1, "rng seed for medium-difficulty play")
	jsonOut := fs.Bool("json", false, "emit the summary as JSON")
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Accuracy(ctx, api.AccuracyRequest{
		RunID:       *runID,
		Latest:      *latest,
		WeightsPath: *weightsPath,
		Games:       *games,
		Difficulty:  *difficulty,
		Seed:        *seed,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("difficulty=%s games=%s wins=%d draws=%d losses=%d invalid=%d accuracy=%.4f fitness=%.6f\n",
		summary.Difficulty,
		humanize.Comma(int64(summary.Games)),
		summary.Wins,
		summary.Draws,
		summary.Losses,
		summary.Invalid,
		summary.Accuracy,
		summary.Fitness,
	)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run's champion")
	outPath := fs.String("out", "", "output weights file path")
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.ExportWeights(ctx, api.ExportWeightsRequest{
		RunID:  *runID,
		Latest: *latest,
		Path:   *outPath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s weights=%s\n", summary.RunID, summary.Path)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: tictacevoctl <init|train|runs|fitness|diagnostics|accuracy|export> [flags]", msg)
}
