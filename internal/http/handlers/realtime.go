package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
	"github.com/loopyhq/loopy-backend/internal/sse"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/plant/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	client := h.hub.NewClient(userID)
	h.hub.AddClient(client)
	defer h.hub.CloseClient(client)

	h.log.Info("Plant stream open", "user_id", userID.String(), "client_id", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
