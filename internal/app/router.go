package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/loopyhq/loopy-backend/internal/http"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:             log,
		AuthMiddleware:  middleware.Auth,
		PlantHandler:    handlers.Plant,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	})
}
