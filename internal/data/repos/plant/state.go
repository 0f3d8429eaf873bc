package plant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

// PlantStateRepo is the raw row access for the per-user plant document. The
// optimistic-locking discipline lives one layer up in the plant state store;
// this repo only exposes the guarded primitives it needs.
type PlantStateRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*plant.PlantState, error)
	Insert(ctx context.Context, tx *gorm.DB, row *plant.PlantState) error
	InsertIgnoreConflict(ctx context.Context, tx *gorm.DB, row *plant.PlantState) (bool, error)
	UpdateByVersion(ctx context.Context, tx *gorm.DB, row *plant.PlantState, expectedVersion int) (bool, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error)
}

type plantStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantStateRepo(db *gorm.DB, baseLog *logger.Logger) PlantStateRepo {
	repoLog := baseLog.With("repo", "PlantStateRepo")
	return &plantStateRepo{db: db, log: repoLog}
}

func (r *plantStateRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*plant.PlantState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row plant.PlantState
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *plantStateRepo) Insert(ctx context.Context, tx *gorm.DB, row *plant.PlantState) error {
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

// InsertIgnoreConflict creates the row unless one already exists for the user.
// Returns whether this call created it.
func (r *plantStateRepo) InsertIgnoreConflict(ctx context.Context, tx *gorm.DB, row *plant.PlantState) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateByVersion writes the full row only when the stored version still
// matches expectedVersion, bumping version by one. Compare-and-set.
func (r *plantStateRepo) UpdateByVersion(ctx context.Context, tx *gorm.DB, row *plant.PlantState, expectedVersion int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Model(&plant.PlantState{}).
		Where("user_id = ? AND version = ?", row.UserID, expectedVersion).
		Updates(map[string]any{
			"phase":                       row.Phase,
			"variant":                     row.Variant,
			"tasks_completed_since_phase": row.TasksCompletedSincePhase,
			"tasks_completed_total":       row.TasksCompletedTotal,
			"asset_filename":              row.AssetFilename,
			"last_updated":                row.LastUpdated,
			"version":                     expectedVersion + 1,
			"updated_at":                  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *plantStateRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&plant.PlantState{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
