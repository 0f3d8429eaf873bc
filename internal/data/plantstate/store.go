package plantstate

import (
	"context"
	"time"

	"github.com/google/uuid"

	plantrepo "github.com/loopyhq/loopy-backend/internal/data/repos/plant"
	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

const DefaultTxAttempts = 5

// Mutator transforms the current state in place. It must be a pure function of
// the state it is handed: Transact may call it more than once on conflict, so
// side effects belong after the commit, not inside the mutator.
type Mutator func(state *plant.PlantState) error

// PlantStateStore serializes writes to a user's plant document through
// version-guarded compare-and-set updates. Calls for different users never
// contend; conflicting calls for the same user retry against the fresh row.
type PlantStateStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*plant.PlantState, error)
	GetOrInit(ctx context.Context, userID uuid.UUID) (*plant.PlantState, bool, error)
	Transact(ctx context.Context, userID uuid.UUID, fn Mutator) (*plant.PlantState, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
}

type plantStateStore struct {
	states   plantrepo.PlantStateRepo
	log      *logger.Logger
	attempts int
}

func NewPlantStateStore(states plantrepo.PlantStateRepo, baseLog *logger.Logger, attempts int) PlantStateStore {
	if attempts <= 0 {
		attempts = DefaultTxAttempts
	}
	return &plantStateStore{
		states:   states,
		log:      baseLog.With("store", "PlantStateStore"),
		attempts: attempts,
	}
}

func (s *plantStateStore) Get(ctx context.Context, userID uuid.UUID) (*plant.PlantState, error) {
	const op = "plant.store.get"
	row, err := s.states.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, plant.Wrap(plant.CodeUnavailable, op, err)
	}
	return row, nil
}

// GetOrInit returns the existing state or atomically creates the phase-1
// initial state. Concurrent first calls for one user converge on a single row:
// the insert ignores conflicts and losers re-read the winner's row.
func (s *plantStateStore) GetOrInit(ctx context.Context, userID uuid.UUID) (*plant.PlantState, bool, error) {
	const op = "plant.store.get_or_init"

	row, err := s.states.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, false, plant.Wrap(plant.CodeUnavailable, op, err)
	}
	if row != nil {
		return row, false, nil
	}

	init := plant.NewPlantState(userID, time.Now())
	created, err := s.states.InsertIgnoreConflict(ctx, nil, init)
	if err != nil {
		return nil, false, plant.Wrap(plant.CodeUnavailable, op, err)
	}
	if created {
		return init, true, nil
	}

	row, err = s.states.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, false, plant.Wrap(plant.CodeUnavailable, op, err)
	}
	if row == nil {
		return nil, false, plant.NewError(plant.CodeInternal, op, "state row vanished after conflicting init", nil)
	}
	return row, false, nil
}

// Transact runs fn against the current (or freshly initialized) state and
// commits the full output with a version compare-and-set. A lost race re-reads
// and re-runs fn; retries are bounded.
func (s *plantStateStore) Transact(ctx context.Context, userID uuid.UUID, fn Mutator) (*plant.PlantState, error) {
	const op = "plant.store.transact"

	for attempt := 0; attempt < s.attempts; attempt++ {
		cur, _, err := s.GetOrInit(ctx, userID)
		if err != nil {
			return nil, err
		}

		next := cur.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.LastUpdated = time.Now().UTC()

		ok, err := s.states.UpdateByVersion(ctx, nil, next, cur.Version)
		if err != nil {
			return nil, plant.Wrap(plant.CodeUnavailable, op, err)
		}
		if ok {
			next.Version = cur.Version + 1
			return next, nil
		}

		s.log.Debug("plant state transaction conflict, retrying",
			"user_id", userID.String(), "attempt", attempt+1)
	}

	return nil, plant.NewError(plant.CodeRetryable, op, "transaction conflict retries exhausted", nil)
}

func (s *plantStateStore) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	const op = "plant.store.delete"
	deleted, err := s.states.DeleteByUserID(ctx, nil, userID)
	if err != nil {
		return false, plant.Wrap(plant.CodeUnavailable, op, err)
	}
	return deleted, nil
}
