package app

import (
	"gorm.io/gorm"

	redisclient "github.com/loopyhq/loopy-backend/internal/clients/redis"
	"github.com/loopyhq/loopy-backend/internal/data/plantstate"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
	"github.com/loopyhq/loopy-backend/internal/services"
)

type Services struct {
	DopamineLog services.DopamineLogService
	Plant       services.PlantService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, bus redisclient.PlantBus) Services {
	log.Info("Wiring services...")

	store := plantstate.NewPlantStateStore(repos.PlantState, log, cfg.TxAttempts)
	dopamineLogService := services.NewDopamineLogService(db, log, repos.DopamineLog)

	// A nil bus disables broadcasting without touching the engine.
	var broadcaster services.PlantBroadcaster
	if bus != nil {
		broadcaster = bus
	}

	plantService := services.NewPlantService(
		log,
		store,
		repos.PlantEvent,
		repos.PlantArchive,
		dopamineLogService,
		broadcaster,
		nil,
	)

	return Services{
		DopamineLog: dopamineLogService,
		Plant:       plantService,
	}
}
