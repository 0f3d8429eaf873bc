package app

import (
	"gorm.io/gorm"

	dopalogrepo "github.com/loopyhq/loopy-backend/internal/data/repos/dopalog"
	plantrepo "github.com/loopyhq/loopy-backend/internal/data/repos/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

type Repos struct {
	PlantState   plantrepo.PlantStateRepo
	PlantEvent   plantrepo.PlantEventRepo
	PlantArchive plantrepo.PlantArchiveRepo
	DopamineLog  dopalogrepo.DopamineLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		PlantState:   plantrepo.NewPlantStateRepo(db, log),
		PlantEvent:   plantrepo.NewPlantEventRepo(db, log),
		PlantArchive: plantrepo.NewPlantArchiveRepo(db, log),
		DopamineLog:  dopalogrepo.NewDopamineLogRepo(db, log),
	}
}
