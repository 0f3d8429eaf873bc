package plant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

// PlantArchiveRepo holds write-once pre-mutation snapshots.
type PlantArchiveRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *plant.PlantArchive) error
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*plant.PlantArchive, error)
}

type plantArchiveRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantArchiveRepo(db *gorm.DB, baseLog *logger.Logger) PlantArchiveRepo {
	repoLog := baseLog.With("repo", "PlantArchiveRepo")
	return &plantArchiveRepo{db: db, log: repoLog}
}

func (r *plantArchiveRepo) Append(ctx context.Context, tx *gorm.DB, row *plant.PlantArchive) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *plantArchiveRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*plant.PlantArchive, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var results []*plant.PlantArchive
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("archived_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
