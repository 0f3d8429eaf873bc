package plant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

// PlantEventRepo is append-only; there is no update or delete path.
type PlantEventRepo interface {
	Append(ctx context.Context, tx *gorm.DB, rows []*plant.PlantEvent) error
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*plant.PlantEvent, error)
	CountByUserIDAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string) (int64, error)
}

type plantEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantEventRepo(db *gorm.DB, baseLog *logger.Logger) PlantEventRepo {
	repoLog := baseLog.With("repo", "PlantEventRepo")
	return &plantEventRepo{db: db, log: repoLog}
}

func (r *plantEventRepo) Append(ctx context.Context, tx *gorm.DB, rows []*plant.PlantEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	return nil
}

func (r *plantEventRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*plant.PlantEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var results []*plant.PlantEvent
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *plantEventRepo) CountByUserIDAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&plant.PlantEvent{}).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
