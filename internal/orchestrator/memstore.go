package orchestrator

import (
	"context"
	"sync"
	"time"
)

type resultKey struct {
	phase         Phase
	competitionID int
}

// MemoryRunStore is an in-memory RunStore. Runs resumed from it do not
// survive a process restart; production deployments use the postgres-backed
// store in the repository package.
type MemoryRunStore struct {
	mu      sync.Mutex
	runs    map[string]*Run
	results map[string]map[resultKey]ActivityResult
}

// NewMemoryRunStore creates an empty in-memory run store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs:    make(map[string]*Run),
		results: make(map[string]map[resultKey]ActivityResult),
	}
}

// Active returns the running run with the given ID, or nil
func (s *MemoryRunStore) Active(_ context.Context, runID string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok || run.Status != RunStatusRunning {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

// Begin creates a fresh run, clearing any prior terminal run's results
func (s *MemoryRunStore) Begin(_ context.Context, runID string, startedAt time.Time) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.runs[runID]; ok && existing.Status == RunStatusRunning {
		return nil, ErrRunActive
	}

	run := &Run{
		RunID:     runID,
		Status:    RunStatusRunning,
		StartedAt: startedAt,
	}
	s.runs[runID] = run
	s.results[runID] = make(map[resultKey]ActivityResult)

	cp := *run
	return &cp, nil
}

// SavePlan records the tracked and setup competition sets
func (s *MemoryRunStore) SavePlan(_ context.Context, runID string, trackedIDs, setupIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return errRunNotFound(runID)
	}
	run.PlanRecorded = true
	run.TrackedIDs = append([]int(nil), trackedIDs...)
	run.SetupIDs = append([]int(nil), setupIDs...)
	return nil
}

// Finish marks the run completed or failed
func (s *MemoryRunStore) Finish(_ context.Context, runID string, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return errRunNotFound(runID)
	}
	now := time.Now()
	run.EndedAt = &now
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = RunStatusCompleted
		run.Error = ""
	}
	return nil
}

// Record stores an activity result; the first result for a tuple wins
func (s *MemoryRunStore) Record(_ context.Context, runID string, phase Phase, competitionID int, res ActivityResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, ok := s.results[runID]
	if !ok {
		return errRunNotFound(runID)
	}
	key := resultKey{phase: phase, competitionID: competitionID}
	if _, exists := results[key]; exists {
		return nil
	}
	results[key] = res
	return nil
}

// Recorded returns the stored result for a tuple, if any
func (s *MemoryRunStore) Recorded(_ context.Context, runID string, phase Phase, competitionID int) (ActivityResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, ok := s.results[runID]
	if !ok {
		return ActivityResult{}, false, nil
	}
	res, exists := results[resultKey{phase: phase, competitionID: competitionID}]
	return res, exists, nil
}

type errRunNotFound string

func (e errRunNotFound) Error() string {
	return "sync run not found: " + string(e)
}
