package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/loopyhq/loopy-backend/internal/http/handlers"
	httpMW "github.com/loopyhq/loopy-backend/internal/http/middleware"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	PlantHandler    *httpH.PlantHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.PlantHandler != nil {
			protected.POST("/plant/init", cfg.PlantHandler.Init)
			protected.GET("/plant/state", cfg.PlantHandler.GetState)
			protected.POST("/plant/task-complete", cfg.PlantHandler.TaskComplete)
			protected.POST("/plant/advance", cfg.PlantHandler.Advance)
			protected.POST("/plant/reset", cfg.PlantHandler.Reset)
			protected.DELETE("/plant", cfg.PlantHandler.Delete)
			protected.GET("/plant/events", cfg.PlantHandler.ListEvents)
			protected.GET("/plant/archive", cfg.PlantHandler.ListArchive)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/plant/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}
