package storage

import (
	"context"

	"tictacevo/internal/model"
)

// Store defines the persistence operations the run pipeline needs. The
// BestIndividual entries are keyed by run ID, one champion per run.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveBestIndividual(ctx context.Context, runID string, individual model.Individual) error
	GetBestIndividual(ctx context.Context, runID string) (model.Individual, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
}
