// Package stats writes per-run artifact directories and maintains the run
// index that lets the CLI list past training runs without a database.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	weightio "tictacevo/internal/io"
	"tictacevo/internal/model"
)

const runIndexFile = "run_index.json"

type RunConfig struct {
	RunID                string  `json:"run_id"`
	Scape                string  `json:"scape"`
	Seed                 int64   `json:"seed"`
	PopulationSize       int     `json:"population_size"`
	Generations          int     `json:"generations"`
	EliteCount           int     `json:"elite_count"`
	TournamentSize       int     `json:"tournament_size"`
	GamesPerEval         int     `json:"games_per_eval"`
	CrossoverRate        float64 `json:"crossover_rate"`
	MutationRate         float64 `json:"mutation_rate"`
	MutationSigma        float64 `json:"mutation_sigma"`
	InitRange            float64 `json:"init_range"`
	Difficulty           string  `json:"difficulty"`
	SwitchFraction       float64 `json:"switch_fraction"`
	Workers              int     `json:"workers"`
	ConvergenceWindow    int     `json:"convergence_window"`
	ConvergenceThreshold float64 `json:"convergence_threshold"`
}

type RunArtifacts struct {
	Config           RunConfig                     `json:"config"`
	BestByGeneration []float64                     `json:"best_by_generation"`
	Diagnostics      []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
	BestWeights      []float64                     `json:"best_weights"`
	FinalBestFitness float64                       `json:"final_best_fitness"`
	Converged        bool                          `json:"converged"`
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Scape            string  `json:"scape"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	GenerationsRun   int     `json:"generations_run"`
	Seed             int64   `json:"seed"`
	Workers          int     `json:"workers"`
	Converged        bool    `json:"converged"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts materializes one run under baseDir/<run-id>: the
// configuration, per-generation diagnostics, the best-fitness series as CSV
// and the champion weight vector as a flat text file.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	summary := map[string]any{
		"final_best_fitness": artifacts.FinalBestFitness,
		"converged":          artifacts.Converged,
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), summary); err != nil {
		return "", err
	}
	if err := writeFitnessSeries(filepath.Join(runDir, "fitness_history.csv"), artifacts.BestByGeneration); err != nil {
		return "", err
	}
	if len(artifacts.BestWeights) > 0 {
		if err := weightio.WriteWeights(filepath.Join(runDir, "best_weights.txt"), artifacts.BestWeights); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

func ReadDiagnostics(baseDir, runID string) ([]model.GenerationDiagnostics, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, "diagnostics.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, false, err
	}
	return diagnostics, true, nil
}

func ReadBestWeights(baseDir, runID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, runID, "best_weights.txt")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	weights, err := weightio.ReadWeights(path)
	if err != nil {
		return nil, false, err
	}
	return weights, true, nil
}

func ReadFitnessSeries(baseDir, runID string) ([]float64, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, "fitness_history.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}

	series := make([]float64, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("fitness history row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func writeFitnessSeries(path string, bestByGeneration []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_fitness"}); err != nil {
		return err
	}
	for i, best := range bestByGeneration {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(best, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
