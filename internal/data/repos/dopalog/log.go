package dopalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loopyhq/loopy-backend/internal/domain/dopalog"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

// DopamineLogRepo is the points-ledger append surface.
type DopamineLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *dopalog.DopamineLog) error
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*dopalog.DopamineLog, error)
}

type dopamineLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDopamineLogRepo(db *gorm.DB, baseLog *logger.Logger) DopamineLogRepo {
	repoLog := baseLog.With("repo", "DopamineLogRepo")
	return &dopamineLogRepo{db: db, log: repoLog}
}

func (r *dopamineLogRepo) Create(ctx context.Context, tx *gorm.DB, row *dopalog.DopamineLog) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	if row.Points < 0 {
		return fmt.Errorf("points must be >= 0")
	}
	if !dopalog.ValidSource(row.Source) {
		return fmt.Errorf("source %q is not allowed", row.Source)
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *dopamineLogRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*dopalog.DopamineLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var results []*dopalog.DopamineLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
