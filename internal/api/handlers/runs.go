package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pv-sizing/internal/api/models"
	"pv-sizing/internal/store"
)

// RunsHandler serves previously stored search runs.
type RunsHandler struct {
	store *store.Store
}

func NewRunsHandler(st *store.Store) *RunsHandler {
	return &RunsHandler{store: st}
}

// ListRuns handles GET /api/v1/runs.
func (h *RunsHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		storeError(c, err)
		return
	}
	out := make([]models.RunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, models.RunSummary{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			Label:     r.Label,
			Best:      r.Best,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

// GetRun handles GET /api/v1/runs/:id.
func (h *RunsHandler) GetRun(c *gin.Context) {
	r, err := h.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RunSummary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Label:     r.Label,
		Best:      r.Best,
	})
}

// GetSurface handles GET /api/v1/runs/:id/surface.
func (h *RunsHandler) GetSurface(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.GetRun(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}
	surface, err := h.store.GetSurface(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "surface": surface})
}

func storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "RUN_NOT_FOUND", Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()},
	})
}
