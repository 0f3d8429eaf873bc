package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/http/response"
	"github.com/loopyhq/loopy-backend/internal/pkg/requestdata"
	"github.com/loopyhq/loopy-backend/internal/services"
)

type PlantHandler struct {
	plantService services.PlantService
}

func NewPlantHandler(plantService services.PlantService) *PlantHandler {
	return &PlantHandler{plantService: plantService}
}

// POST /api/plant/init
func (h *PlantHandler) Init(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	state, idempotent, err := h.plantService.Init(c.Request.Context(), userID)
	if err != nil {
		respondPlantError(c, err)
		return
	}
	if idempotent {
		response.RespondOK(c, gin.H{"ok": true, "plant": state, "idempotent": true})
		return
	}
	response.RespondCreated(c, gin.H{"ok": true, "plant": state})
}

// GET /api/plant/state
func (h *PlantHandler) GetState(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	state, err := h.plantService.GetState(c.Request.Context(), userID)
	if err != nil {
		respondPlantError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "plant": state})
}

// POST /api/plant/task-complete
// body: { "task_id": "...", "points": 1 }
func (h *PlantHandler) TaskComplete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		TaskID *string `json:"task_id"`
		Points *int    `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	points := 1
	if req.Points != nil {
		points = *req.Points
	}
	state, advanced, err := h.plantService.RecordTaskCompletion(c.Request.Context(), userID, req.TaskID, points)
	if err != nil {
		respondPlantError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "advanced": advanced, "plant": state})
}

// POST /api/plant/advance
func (h *PlantHandler) Advance(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	state, advanced, err := h.plantService.Advance(c.Request.Context(), userID)
	if err != nil {
		respondPlantError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "advanced": advanced, "plant": state})
}

// POST /api/plant/reset
// body: { "reason": "..." }
func (h *PlantHandler) Reset(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	state, err := h.plantService.Reset(c.Request.Context(), userID, req.Reason)
	if err != nil {
		respondPlantError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "plant": state})
}

// DELETE /api/plant
func (h *PlantHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	deleted, err := h.plantService.Delete(c.Request.Context(), userID)
	if err != nil {
		respondPlantError(c, err)
		return
	}
	if !deleted {
		response.RespondOK(c, gin.H{"ok": true, "deleted": false, "message": "Nothing to delete."})
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "deleted": true})
}

// GET /api/plant/events?limit=50
func (h *PlantHandler) ListEvents(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	rows, err := h.plantService.ListEvents(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		respondPlantError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "events": rows})
}

// GET /api/plant/archive?limit=50
func (h *PlantHandler) ListArchive(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	rows, err := h.plantService.ListArchive(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		respondPlantError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "archive": rows})
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("no authenticated user"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func respondPlantError(c *gin.Context, err error) {
	code := plant.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case plant.CodeValidation:
		status = http.StatusBadRequest
	case plant.CodeNotFound:
		status = http.StatusNotFound
	case plant.CodeConflict, plant.CodeRetryable:
		status = http.StatusConflict
	case plant.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	codeStr := string(code)
	if codeStr == "" {
		codeStr = string(plant.CodeInternal)
	}
	response.RespondError(c, status, codeStr, err)
}
