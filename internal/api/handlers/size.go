package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pv-sizing/internal/analysis"
	"pv-sizing/internal/api/models"
	"pv-sizing/internal/model"
	"pv-sizing/internal/search"
	"pv-sizing/internal/store"
)

// SizeHandler runs capacity searches and persists the results.
type SizeHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewSizeHandler(st *store.Store, logger *slog.Logger) *SizeHandler {
	return &SizeHandler{store: st, logger: logger}
}

// RunSize handles POST /api/v1/size.
func (h *SizeHandler) RunSize(c *gin.Context) {
	var req models.SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	res, err := search.Run(c.Request.Context(), req.ToSearchConfig())
	if err != nil {
		engineError(c, err)
		return
	}

	run := &store.Run{Label: req.Label, Best: res.Best, Surface: res.Surface}
	if h.store != nil {
		if err := h.store.SaveRun(c.Request.Context(), run); err != nil {
			// A failed save must not discard a completed search.
			h.logger.Error("saving run failed", "error", err)
			run.ID = ""
		}
	}

	resp := models.SizeResponse{
		RunID:       run.ID,
		Best:        res.Best,
		Savings:     models.SavingsFromPotential(analysis.ComputePotential(res.Surface, res.Best)),
		Breakpoints: res.BestMix.Breakpoints(),
		Mix:         res.BestMix.Segments,
	}
	if req.Options.IncludeSurface {
		resp.Surface = res.Surface
	}
	if req.Options.IncludeCurve {
		resp.Curve = res.BestCurve.Points()
	}
	if req.Options.IncludeLedger {
		resp.Ledger = models.LedgerFromDispatch(res.BestLedger)
	}
	c.JSON(http.StatusOK, resp)
}

// RunSensitivity handles POST /api/v1/size/sensitivity.
func (h *SizeHandler) RunSensitivity(c *gin.Context) {
	var req models.SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	results, err := search.RunSensitivity(c.Request.Context(), req.ToSearchConfig(), req.Overrides)
	if err != nil {
		engineError(c, err)
		return
	}

	resp := models.SensitivityResponse{Results: make([]models.SensitivityEntry, 0, len(results))}
	for _, r := range results {
		entry := models.SensitivityEntry{Name: r.Name}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		} else {
			best := r.Result.Best
			entry.Best = &best
		}
		resp.Results = append(resp.Results, entry)
	}
	c.JSON(http.StatusOK, resp)
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}

// engineError maps engine error kinds onto HTTP statuses.
func engineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		badRequest(c, "INVALID_INPUT", err)
	case errors.Is(err, model.ErrBatteryConfig):
		badRequest(c, "INVALID_BATTERY", err)
	case errors.Is(err, model.ErrNoFeasibleMix):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NO_FEASIBLE_MIX", Message: err.Error()},
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()},
		})
	}
}
