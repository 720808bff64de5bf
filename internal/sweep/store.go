package sweep

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reefharvest/bioecon-core/pkg/config"
	"github.com/reefharvest/bioecon-core/pkg/models"
)

// ErrTrialNotFound indicates a lookup for an unknown trial ID
var ErrTrialNotFound = errors.New("trial not found")

// Store holds sweep trials in memory for the lifetime of one sweep.
// Nothing is persisted beyond the process.
type Store struct {
	mu     sync.RWMutex
	trials map[string]*models.Trial
	order  []string
}

// NewStore creates an empty trial store
func NewStore() *Store {
	return &Store{
		trials: make(map[string]*models.Trial),
	}
}

// Create registers a pending trial with its drawn parameters and
// returns it. Trial IDs are generated; collisions are not possible
// within one store.
func (s *Store) Create(index int, seed uint64, params config.Model) *models.Trial {
	s.mu.Lock()
	defer s.mu.Unlock()

	trial := &models.Trial{
		ID:        uuid.NewString(),
		Index:     index,
		Seed:      seed,
		Status:    models.TrialStatusPending,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
	s.trials[trial.ID] = trial
	s.order = append(s.order, trial.ID)
	return trial
}

// Get returns the trial with the given ID
func (s *Store) Get(id string) (*models.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trial, ok := s.trials[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTrialNotFound, id)
	}
	return trial, nil
}

// List returns all trials in creation order
func (s *Store) List() []*models.Trial {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Trial, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.trials[id])
	}
	return out
}

// SetStatus transitions a trial and stamps the matching timestamp
func (s *Store) SetStatus(id string, status models.TrialStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trial, ok := s.trials[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrialNotFound, id)
	}

	trial.Status = status
	if errMsg != "" {
		trial.Error = errMsg
	}

	switch status {
	case models.TrialStatusRunning:
		if trial.StartedAt == nil {
			now := time.Now().UTC()
			trial.StartedAt = &now
		}
	case models.TrialStatusCompleted, models.TrialStatusFailed:
		now := time.Now().UTC()
		trial.EndedAt = &now
	}
	return nil
}

// SetResult attaches a completed trial's solution and record
func (s *Store) SetResult(id string, sol *models.Solution, rec models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trial, ok := s.trials[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrialNotFound, id)
	}
	trial.Solution = sol
	trial.Record = rec
	return nil
}
