package plant

import (
	"time"

	"github.com/google/uuid"
)

const (
	PhaseSeed     = 1
	PhaseSprout   = 2
	PhaseGrowth   = 3
	PhaseTerminal = 4

	VariantPot = "POT"
)

// PlantState is the per-user progression document. One row per user; all
// mutations go through the plant state store's version-guarded transaction.
type PlantState struct {
	UserID                   uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	Phase                    int       `gorm:"not null;column:phase" json:"phase"`
	Variant                  string    `gorm:"not null;column:variant" json:"variant"`
	TasksCompletedSincePhase int       `gorm:"not null;column:tasks_completed_since_phase" json:"tasks_completed_since_phase"`
	TasksCompletedTotal      int       `gorm:"not null;column:tasks_completed_total" json:"tasks_completed_total"`
	AssetFilename            string    `gorm:"column:asset_filename" json:"asset_filename"`
	Version                  int       `gorm:"not null;default:0;column:version" json:"-"`
	LastUpdated              time.Time `gorm:"not null;column:last_updated" json:"last_updated"`
	CreatedAt                time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (PlantState) TableName() string { return "dopamine_plant" }

// NewPlantState returns the phase-1 initial state for a user. All timestamps
// are set here so a freshly inserted state serializes complete.
func NewPlantState(userID uuid.UUID, now time.Time) *PlantState {
	now = now.UTC()
	return &PlantState{
		UserID:                   userID,
		Phase:                    PhaseSeed,
		Variant:                  VariantPot,
		TasksCompletedSincePhase: 0,
		TasksCompletedTotal:      0,
		AssetFilename:            Asset(PhaseSeed, VariantPot),
		LastUpdated:              now,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// Clone returns a copy safe to hand to a transaction mutator.
func (s *PlantState) Clone() *PlantState {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Terminal reports whether the state can no longer advance.
func (s *PlantState) Terminal() bool {
	return s != nil && s.Phase >= PhaseTerminal
}
