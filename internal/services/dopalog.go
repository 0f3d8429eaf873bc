package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dopalogrepo "github.com/loopyhq/loopy-backend/internal/data/repos/dopalog"
	"github.com/loopyhq/loopy-backend/internal/domain/dopalog"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

// DopamineLogService appends to the points ledger consumed by the wider
// points economy. The plant engine treats it as a fire-and-forget sink.
type DopamineLogService interface {
	Record(ctx context.Context, userID uuid.UUID, points int, source string, context map[string]any, note string) (*dopalog.DopamineLog, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*dopalog.DopamineLog, error)
}

type dopamineLogService struct {
	db   *gorm.DB
	log  *logger.Logger
	logs dopalogrepo.DopamineLogRepo
}

func NewDopamineLogService(db *gorm.DB, baseLog *logger.Logger, logs dopalogrepo.DopamineLogRepo) DopamineLogService {
	serviceLog := baseLog.With("service", "DopamineLogService")
	return &dopamineLogService{db: db, log: serviceLog, logs: logs}
}

func (s *dopamineLogService) Record(ctx context.Context, userID uuid.UUID, points int, source string, logCtx map[string]any, note string) (*dopalog.DopamineLog, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if !dopalog.ValidSource(source) {
		return nil, fmt.Errorf("source %q is not allowed", source)
	}

	var ctxJSON datatypes.JSON
	if logCtx != nil {
		raw, err := json.Marshal(logCtx)
		if err != nil {
			return nil, fmt.Errorf("marshal ledger context: %w", err)
		}
		ctxJSON = datatypes.JSON(raw)
	}

	row := &dopalog.DopamineLog{
		ID:      uuid.New(),
		UserID:  userID,
		Points:  points,
		Source:  source,
		Context: ctxJSON,
		Note:    note,
	}
	if err := s.logs.Create(ctx, nil, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *dopamineLogService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*dopalog.DopamineLog, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.logs.ListByUserID(ctx, nil, userID, limit)
}
