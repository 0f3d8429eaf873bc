package dopalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SourceTaskCompleted      = "task_completed"
	SourceChaosEntryCreated  = "chaos_entry_created"
	SourceDailySessionReview = "daily_session_review"
	SourceManualReward       = "manual_reward"
	SourcePlantTaskCompleted = "plant_task_completed"
	SourcePlantPhaseAdvanced = "plant_phase_advanced"
	SourcePlantInit          = "plant_init"
	SourcePlantReset         = "plant_reset"
	SourcePlantDeleted       = "plant_deleted"
)

var allowedSources = map[string]struct{}{
	SourceTaskCompleted:      {},
	SourceChaosEntryCreated:  {},
	SourceDailySessionReview: {},
	SourceManualReward:       {},
	SourcePlantTaskCompleted: {},
	SourcePlantPhaseAdvanced: {},
	SourcePlantInit:          {},
	SourcePlantReset:         {},
	SourcePlantDeleted:       {},
}

// ValidSource reports whether source is one of the allowed ledger sources.
func ValidSource(source string) bool {
	_, ok := allowedSources[source]
	return ok
}

// DopamineLog is one append-only points-ledger entry. The surrounding points
// economy reads these; the plant engine only ever appends.
type DopamineLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Points    int            `gorm:"not null;column:points" json:"points"`
	Source    string         `gorm:"not null;index;column:source" json:"source"`
	Context   datatypes.JSON `gorm:"type:jsonb;column:context" json:"context,omitempty"`
	Note      string         `gorm:"column:note" json:"note,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (DopamineLog) TableName() string { return "dopamine_log" }
