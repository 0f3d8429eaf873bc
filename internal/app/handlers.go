package app

import (
	"gorm.io/gorm"

	httpH "github.com/loopyhq/loopy-backend/internal/http/handlers"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
	"github.com/loopyhq/loopy-backend/internal/sse"
)

type Handlers struct {
	Plant    *httpH.PlantHandler
	Realtime *httpH.RealtimeHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, hub *sse.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Plant:    httpH.NewPlantHandler(services.Plant),
		Realtime: httpH.NewRealtimeHandler(log, hub),
		Health:   httpH.NewHealthHandler(db),
	}
}
