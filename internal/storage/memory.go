package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"tictacevo/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]model.RunRecord
	best        map[string]model.Individual
	history     map[string][]float64
	diagnostics map[string][]model.GenerationDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init allocates the backing maps. Calling it again on a live store is a
// no-op so that repeated Init calls never discard saved runs.
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runs != nil {
		return nil
	}
	s.runs = make(map[string]model.RunRecord)
	s.best = make(map[string]model.Individual)
	s.history = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	return nil
}

// initialized reports whether Init has been called. Callers must hold mu.
func (s *MemoryStore) initialized() bool {
	return s.runs != nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized() {
		return errNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized() {
		return model.RunRecord{}, false, errNotInitialized
	}
	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized() {
		return nil, errNotInitialized
	}
	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	// Newest first, matching the sqlite backend's created_at ordering.
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
		}
		return runs[i].ID > runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveBestIndividual(_ context.Context, runID string, individual model.Individual) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized() {
		return errNotInitialized
	}
	s.best[runID] = individual.Clone()
	return nil
}

func (s *MemoryStore) GetBestIndividual(_ context.Context, runID string) (model.Individual, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized() {
		return model.Individual{}, false, errNotInitialized
	}
	individual, ok := s.best[runID]
	if !ok {
		return model.Individual{}, false, nil
	}
	return individual.Clone(), true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized() {
		return errNotInitialized
	}
	copied := append([]float64(nil), history...)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized() {
		return nil, false, errNotInitialized
	}
	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := append([]float64(nil), history...)
	return copied, true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized() {
		return errNotInitialized
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized() {
		return nil, false, errNotInitialized
	}
	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}
