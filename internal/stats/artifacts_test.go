package stats

import (
	"os"
	"path/filepath"
	"testing"

	"tictacevo/internal/model"
)

func TestWriteRunArtifactsCreatesRunDir(t *testing.T) {
	baseDir := t.TempDir()
	artifacts := RunArtifacts{
		Config: RunConfig{
			RunID:          "run-1",
			Scape:          "tictactoe",
			Seed:           42,
			PopulationSize: 20,
			Generations:    30,
			Difficulty:     "phased",
		},
		BestByGeneration: []float64{0.2, 0.5, 0.8},
		Diagnostics: []model.GenerationDiagnostics{
			{Generation: 1, Difficulty: "medium", BestFitness: 0.2, Games: 100},
		},
		BestWeights:      []float64{0.5, -0.25},
		FinalBestFitness: 0.8,
		Converged:        true,
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Fatalf("unexpected run dir: %s", runDir)
	}

	for _, name := range []string{"config.json", "diagnostics.json", "summary.json", "fitness_history.csv", "best_weights.txt"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestReadRunConfigRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	input := RunConfig{RunID: "run-1", Scape: "tictactoe", Seed: 7, PopulationSize: 10, Generations: 5}
	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{Config: input, BestWeights: []float64{1}}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	output, ok, err := ReadRunConfig(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted config")
	}
	if output != input {
		t.Fatalf("round trip mismatch: %+v", output)
	}

	_, ok, err = ReadRunConfig(baseDir, "missing")
	if err != nil {
		t.Fatalf("read missing config: %v", err)
	}
	if ok {
		t.Fatal("found config for a run that was never written")
	}
}

func TestReadDiagnosticsRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	input := []model.GenerationDiagnostics{
		{Generation: 0, Difficulty: "medium", BestFitness: 0.2, Games: 30, Wins: 4},
		{Generation: 1, Difficulty: "hard", BestFitness: 0.45, Games: 30, Wins: 9},
	}
	artifacts := RunArtifacts{
		Config:      RunConfig{RunID: "run-1"},
		Diagnostics: input,
	}
	if _, err := WriteRunArtifacts(baseDir, artifacts); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	output, ok, err := ReadDiagnostics(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted diagnostics")
	}
	if len(output) != 2 || output[0] != input[0] || output[1] != input[1] {
		t.Fatalf("round trip mismatch: %+v", output)
	}

	_, ok, err = ReadDiagnostics(baseDir, "missing")
	if err != nil {
		t.Fatalf("read missing diagnostics: %v", err)
	}
	if ok {
		t.Fatal("found diagnostics for a run that was never written")
	}
}

func TestReadBestWeightsAndFitnessSeries(t *testing.T) {
	baseDir := t.TempDir()
	artifacts := RunArtifacts{
		Config:           RunConfig{RunID: "run-1"},
		BestByGeneration: []float64{0.25, 0.5},
		BestWeights:      []float64{1.5, -2.25, 0},
	}
	if _, err := WriteRunArtifacts(baseDir, artifacts); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	weights, ok, err := ReadBestWeights(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read weights: %v", err)
	}
	if !ok || len(weights) != 3 || weights[1] != -2.25 {
		t.Fatalf("unexpected weights: %v", weights)
	}

	series, ok, err := ReadFitnessSeries(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read series: %v", err)
	}
	if !ok || len(series) != 2 || series[0] != 0.25 || series[1] != 0.5 {
		t.Fatalf("unexpected series: %v", series)
	}
}

func TestRunIndexAppendAndList(t *testing.T) {
	baseDir := t.TempDir()

	entries := []RunIndexEntry{
		{RunID: "run-a", Scape: "tictactoe", CreatedAtUTC: "2026-08-25T09:00:00Z", FinalBestFitness: 0.4},
		{RunID: "run-b", Scape: "tictactoe", CreatedAtUTC: "2026-08-27T09:00:00Z", FinalBestFitness: 0.8},
	}
	for _, entry := range entries {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	listed, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(listed) != 2 || listed[0].RunID != "run-b" || listed[1].RunID != "run-a" {
		t.Fatalf("unexpected index ordering: %+v", listed)
	}
}

func TestRunIndexUpdatesExistingEntry(t *testing.T) {
	baseDir := t.TempDir()

	entry := RunIndexEntry{RunID: "run-a", CreatedAtUTC: "2026-08-27T09:00:00Z", FinalBestFitness: 0.4}
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatalf("append: %v", err)
	}
	entry.FinalBestFitness = 0.9
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatalf("re-append: %v", err)
	}

	listed, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(listed) != 1 || listed[0].FinalBestFitness != 0.9 {
		t.Fatalf("unexpected index: %+v", listed)
	}
}

func TestListRunIndexEmptyDir(t *testing.T) {
	listed, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty index, got %+v", listed)
	}
}
