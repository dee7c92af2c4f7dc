package model

import "math"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// FitnessUnknown marks an individual that has not been evaluated yet.
// Evaluated fitness is always finite, so negative infinity is safe.
var FitnessUnknown = math.Inf(-1)

// Individual pairs a flat weight vector with the fitness it earned in
// simulated play. The vector fully determines one neural policy.
type Individual struct {
	VersionedRecord
	ID      string    `json:"id"`
	Weights []float64 `json:"weights"`
	Fitness float64   `json:"fitness"`
}

// Evaluated reports whether the individual carries a real fitness.
func (i Individual) Evaluated() bool {
	return !math.IsInf(i.Fitness, -1)
}

// Clone returns a deep copy so genetic operators never alias parent weights.
func (i Individual) Clone() Individual {
	out := i
	out.Weights = append([]float64(nil), i.Weights...)
	return out
}

// GenerationDiagnostics summarizes one generation for reporting and
// persistence. Accuracy is (wins+draws)/games over the whole generation.
type GenerationDiagnostics struct {
	Generation   int     `json:"generation"`
	Difficulty   string  `json:"difficulty"`
	BestFitness  float64 `json:"best_fitness"`
	MeanFitness  float64 `json:"mean_fitness"`
	MinFitness   float64 `json:"min_fitness"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Draws        int     `json:"draws"`
	Losses       int     `json:"losses"`
	InvalidMoves int     `json:"invalid_moves"`
	Accuracy     float64 `json:"accuracy"`
}

// RunRecord is the persisted metadata of one evolution run.
type RunRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	Scape          string  `json:"scape"`
	Seed           int64   `json:"seed"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	GenerationsRun int     `json:"generations_run"`
	Converged      bool    `json:"converged"`
	BestFitness    float64 `json:"best_fitness"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}
