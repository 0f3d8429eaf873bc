package plant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventPlantInit     = "plant_init"
	EventTaskCompleted = "task_completed"
	EventPhaseAdvanced = "phase_advanced"
	EventPlantReset    = "plant_reset"
	EventPlantDeleted  = "plant_deleted"
)

// PlantEvent is one append-only lifecycle record. Rows are never updated or
// deleted; audit only, never consulted to rebuild state.
type PlantEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	EventType     string    `gorm:"not null;index;column:event_type" json:"event_type"`
	PhaseBefore   *int      `gorm:"column:phase_before" json:"phase_before,omitempty"`
	PhaseAfter    *int      `gorm:"column:phase_after" json:"phase_after,omitempty"`
	VariantBefore *string   `gorm:"column:variant_before" json:"variant_before,omitempty"`
	VariantAfter  *string   `gorm:"column:variant_after" json:"variant_after,omitempty"`
	TaskID        *string   `gorm:"column:task_id" json:"task_id,omitempty"`
	Points        *int      `gorm:"column:points" json:"points,omitempty"`
	Reason        *string   `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PlantEvent) TableName() string { return "dopamine_plant_event" }

const (
	ArchiveCauseReset  = "reset"
	ArchiveCauseDelete = "delete"
)

// PlantArchive is a write-once snapshot of a PlantState taken immediately
// before a reset or delete. Payload holds the full pre-mutation state.
type PlantArchive struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Cause      string         `gorm:"not null;column:cause" json:"cause"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null;column:payload" json:"payload"`
	ArchivedAt time.Time      `gorm:"not null;column:archived_at" json:"archived_at"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (PlantArchive) TableName() string { return "dopamine_plant_archive" }
