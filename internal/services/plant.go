package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/loopyhq/loopy-backend/internal/data/plantstate"
	plantrepo "github.com/loopyhq/loopy-backend/internal/data/repos/plant"
	"github.com/loopyhq/loopy-backend/internal/domain/dopalog"
	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
	"github.com/loopyhq/loopy-backend/internal/pkg/pointers"
)

// PlantBroadcaster pushes committed plant changes to connected clients.
// Best-effort: failures are reported as partial audit, never surfaced.
type PlantBroadcaster interface {
	PublishPlantUpdate(ctx context.Context, userID uuid.UUID, event string, state *plant.PlantState) error
}

// PlantService is the progression engine. It exclusively owns transitions of
// the per-user plant state; archive, event log, ledger, and broadcast are
// append-only surfaces hanging off each operation.
type PlantService interface {
	Init(ctx context.Context, userID uuid.UUID) (*plant.PlantState, bool, error)
	GetState(ctx context.Context, userID uuid.UUID) (*plant.PlantState, error)
	RecordTaskCompletion(ctx context.Context, userID uuid.UUID, taskID *string, points int) (*plant.PlantState, bool, error)
	Advance(ctx context.Context, userID uuid.UUID) (*plant.PlantState, bool, error)
	Reset(ctx context.Context, userID uuid.UUID, reason string) (*plant.PlantState, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
	ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*plant.PlantEvent, error)
	ListArchive(ctx context.Context, userID uuid.UUID, limit int) ([]*plant.PlantArchive, error)
}

type plantService struct {
	log      *logger.Logger
	store    plantstate.PlantStateStore
	events   plantrepo.PlantEventRepo
	archives plantrepo.PlantArchiveRepo
	ledger   DopamineLogService
	bus      PlantBroadcaster
	chooser  plant.Chooser
}

func NewPlantService(
	baseLog *logger.Logger,
	store plantstate.PlantStateStore,
	events plantrepo.PlantEventRepo,
	archives plantrepo.PlantArchiveRepo,
	ledger DopamineLogService,
	bus PlantBroadcaster,
	chooser plant.Chooser,
) PlantService {
	if chooser == nil {
		chooser = plant.NewChooser()
	}
	return &plantService{
		log:      baseLog.With("service", "PlantService"),
		store:    store,
		events:   events,
		archives: archives,
		ledger:   ledger,
		bus:      bus,
		chooser:  chooser,
	}
}

func (s *plantService) Init(ctx context.Context, userID uuid.UUID) (*plant.PlantState, bool, error) {
	const op = "plant.init"
	if userID == uuid.Nil {
		return nil, false, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}

	state, created, err := s.store.GetOrInit(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return state, true, nil
	}

	s.appendEvents(ctx, op, []*plant.PlantEvent{{
		ID:           uuid.New(),
		UserID:       userID,
		EventType:    plant.EventPlantInit,
		PhaseAfter:   pointers.Int(state.Phase),
		VariantAfter: pointers.String(state.Variant),
	}})
	s.recordLedger(ctx, op, userID, 0, dopalog.SourcePlantInit, nil, "Plant initialized")
	s.publish(ctx, op, userID, plant.EventPlantInit, state)

	return state, false, nil
}

func (s *plantService) GetState(ctx context.Context, userID uuid.UUID) (*plant.PlantState, error) {
	const op = "plant.get_state"
	if userID == uuid.Nil {
		return nil, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}
	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, plant.NewError(plant.CodeNotFound, op, "plant not initialized", nil)
	}
	return state, nil
}

// RecordTaskCompletion increments the counters and, when the phase threshold
// is crossed, advances one phase along the branch graph. At the terminal
// phase the counters keep incrementing but are never consulted.
func (s *plantService) RecordTaskCompletion(ctx context.Context, userID uuid.UUID, taskID *string, points int) (*plant.PlantState, bool, error) {
	const op = "plant.record_task_completion"
	if userID == uuid.Nil {
		return nil, false, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}
	if points < 0 {
		return nil, false, plant.NewError(plant.CodeValidation, op, "points must be >= 0", nil)
	}

	var advanced bool
	var events []*plant.PlantEvent

	state, err := s.store.Transact(ctx, userID, func(st *plant.PlantState) error {
		// The store may retry the mutator on conflict; start fresh each run.
		advanced = false
		events = nil

		st.TasksCompletedSincePhase++
		st.TasksCompletedTotal++

		if plant.IsEligible(st.Phase, st.TasksCompletedSincePhase) {
			nextPhase, nextVariant := plant.SelectNext(s.chooser, st.Phase, st.Variant)
			if nextPhase != st.Phase || nextVariant != st.Variant {
				events = append(events, &plant.PlantEvent{
					ID:            uuid.New(),
					UserID:        userID,
					EventType:     plant.EventPhaseAdvanced,
					PhaseBefore:   pointers.Int(st.Phase),
					VariantBefore: pointers.String(st.Variant),
					PhaseAfter:    pointers.Int(nextPhase),
					VariantAfter:  pointers.String(nextVariant),
				})
				st.Phase = nextPhase
				st.Variant = nextVariant
				st.TasksCompletedSincePhase = 0
				advanced = true
			}
		}

		events = append(events, &plant.PlantEvent{
			ID:           uuid.New(),
			UserID:       userID,
			EventType:    plant.EventTaskCompleted,
			TaskID:       taskID,
			Points:       pointers.Int(points),
			PhaseAfter:   pointers.Int(st.Phase),
			VariantAfter: pointers.String(st.Variant),
		})

		st.AssetFilename = plant.Asset(st.Phase, st.Variant)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.appendEvents(ctx, op, events)
	ledgerCtx := map[string]any{}
	if taskID != nil {
		ledgerCtx["taskId"] = *taskID
	}
	s.recordLedger(ctx, op, userID, points, dopalog.SourcePlantTaskCompleted, ledgerCtx,
		fmt.Sprintf("Phase %d variant %s", state.Phase, state.Variant))
	s.publish(ctx, op, userID, plant.EventTaskCompleted, state)

	return state, advanced, nil
}

// Advance forces one phase transition regardless of thresholds. Terminal and
// branchless states are returned unchanged.
func (s *plantService) Advance(ctx context.Context, userID uuid.UUID) (*plant.PlantState, bool, error) {
	const op = "plant.advance"
	if userID == uuid.Nil {
		return nil, false, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}

	var advanced bool
	var events []*plant.PlantEvent

	state, err := s.store.Transact(ctx, userID, func(st *plant.PlantState) error {
		advanced = false
		events = nil

		if st.Terminal() {
			return nil
		}
		nextPhase, nextVariant := plant.SelectNext(s.chooser, st.Phase, st.Variant)
		if nextPhase == st.Phase && nextVariant == st.Variant {
			return nil
		}

		events = append(events, &plant.PlantEvent{
			ID:            uuid.New(),
			UserID:        userID,
			EventType:     plant.EventPhaseAdvanced,
			PhaseBefore:   pointers.Int(st.Phase),
			VariantBefore: pointers.String(st.Variant),
			PhaseAfter:    pointers.Int(nextPhase),
			VariantAfter:  pointers.String(nextVariant),
		})
		st.Phase = nextPhase
		st.Variant = nextVariant
		st.TasksCompletedSincePhase = 0
		st.AssetFilename = plant.Asset(st.Phase, st.Variant)
		advanced = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.appendEvents(ctx, op, events)
	s.recordLedger(ctx, op, userID, 1, dopalog.SourcePlantPhaseAdvanced, nil,
		fmt.Sprintf("Advanced to phase %d variant %s", state.Phase, state.Variant))
	if advanced {
		s.publish(ctx, op, userID, plant.EventPhaseAdvanced, state)
	}

	return state, advanced, nil
}

// Reset archives the current state (when one exists), then overwrites it with
// the phase-1 initial state. The archive write happens strictly before the
// destructive overwrite.
func (s *plantService) Reset(ctx context.Context, userID uuid.UUID, reason string) (*plant.PlantState, error) {
	const op = "plant.reset"
	if userID == uuid.Nil {
		return nil, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}
	cause := reason
	if cause == "" {
		cause = plant.ArchiveCauseReset
	}

	cur, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cur != nil {
		if err := s.snapshot(ctx, op, userID, cur, cause); err != nil {
			return nil, err
		}
	}

	state, err := s.store.Transact(ctx, userID, func(st *plant.PlantState) error {
		st.Phase = plant.PhaseSeed
		st.Variant = plant.VariantPot
		st.TasksCompletedSincePhase = 0
		st.TasksCompletedTotal = 0
		st.AssetFilename = plant.Asset(plant.PhaseSeed, plant.VariantPot)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appendEvents(ctx, op, []*plant.PlantEvent{{
		ID:           uuid.New(),
		UserID:       userID,
		EventType:    plant.EventPlantReset,
		Reason:       pointers.String(cause),
		PhaseAfter:   pointers.Int(state.Phase),
		VariantAfter: pointers.String(state.Variant),
	}})
	s.recordLedger(ctx, op, userID, 0, dopalog.SourcePlantReset, nil, cause)
	s.publish(ctx, op, userID, plant.EventPlantReset, state)

	return state, nil
}

// Delete archives then removes the state. Deleting an absent plant is a
// no-op, not an error.
func (s *plantService) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	const op = "plant.delete"
	if userID == uuid.Nil {
		return false, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}

	cur, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if cur == nil {
		return false, nil
	}

	if err := s.snapshot(ctx, op, userID, cur, plant.ArchiveCauseDelete); err != nil {
		return false, err
	}

	deleted, err := s.store.Delete(ctx, userID)
	if err != nil {
		return false, err
	}
	if !deleted {
		// Concurrent delete won the race; nothing left to audit.
		return false, nil
	}

	s.appendEvents(ctx, op, []*plant.PlantEvent{{
		ID:        uuid.New(),
		UserID:    userID,
		EventType: plant.EventPlantDeleted,
	}})
	s.recordLedger(ctx, op, userID, 0, dopalog.SourcePlantDeleted, nil, "Archived then deleted")
	s.publish(ctx, op, userID, plant.EventPlantDeleted, nil)

	return true, nil
}

func (s *plantService) ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*plant.PlantEvent, error) {
	const op = "plant.list_events"
	if userID == uuid.Nil {
		return nil, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}
	rows, err := s.events.ListByUserID(ctx, nil, userID, limit)
	if err != nil {
		return nil, plant.Wrap(plant.CodeUnavailable, op, err)
	}
	return rows, nil
}

func (s *plantService) ListArchive(ctx context.Context, userID uuid.UUID, limit int) ([]*plant.PlantArchive, error) {
	const op = "plant.list_archive"
	if userID == uuid.Nil {
		return nil, plant.NewError(plant.CodeValidation, op, "missing user id", nil)
	}
	rows, err := s.archives.ListByUserID(ctx, nil, userID, limit)
	if err != nil {
		return nil, plant.Wrap(plant.CodeUnavailable, op, err)
	}
	return rows, nil
}

// snapshot writes the archive record for the pre-mutation state. It runs
// before the destructive write, so a failure here aborts the operation.
func (s *plantService) snapshot(ctx context.Context, op string, userID uuid.UUID, state *plant.PlantState, cause string) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return plant.Wrap(plant.CodeInternal, op, err)
	}
	row := &plant.PlantArchive{
		ID:         uuid.New(),
		UserID:     userID,
		Cause:      cause,
		Payload:    datatypes.JSON(payload),
		ArchivedAt: time.Now().UTC(),
	}
	if err := s.archives.Append(ctx, nil, row); err != nil {
		return plant.Wrap(plant.CodeUnavailable, op, err)
	}
	return nil
}

// Audit writes below run after the state transaction committed. Their
// failures are logged and never roll back or fail the operation.

func (s *plantService) appendEvents(ctx context.Context, op string, events []*plant.PlantEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.events.Append(ctx, nil, events); err != nil {
		s.log.Warn("plant event append failed after commit",
			"op", op, "code", string(plant.CodePartialAudit), "error", err)
	}
}

func (s *plantService) recordLedger(ctx context.Context, op string, userID uuid.UUID, points int, source string, logCtx map[string]any, note string) {
	if s.ledger == nil {
		return
	}
	if _, err := s.ledger.Record(ctx, userID, points, source, logCtx, note); err != nil {
		s.log.Warn("points ledger write failed after commit",
			"op", op, "code", string(plant.CodePartialAudit), "error", err)
	}
}

func (s *plantService) publish(ctx context.Context, op string, userID uuid.UUID, event string, state *plant.PlantState) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishPlantUpdate(ctx, userID, event, state); err != nil {
		s.log.Warn("plant update broadcast failed",
			"op", op, "code", string(plant.CodePartialAudit), "error", err)
	}
}
