package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prodplan/internal/model"
	"prodplan/internal/optimizer"
	"prodplan/pkg/dateutil"
)

type OptimizerHandler struct {
	opt    *optimizer.Optimizer
	logger *zap.Logger
}

func NewOptimizerHandler(opt *optimizer.Optimizer, logger *zap.Logger) *OptimizerHandler {
	return &OptimizerHandler{opt: opt, logger: logger}
}

type suggestRequest struct {
	Orders    []model.Order `json:"orders" binding:"required"`
	StartDate string        `json:"start_date"`
}

func (h *OptimizerHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "orders required"})
		return
	}

	start := time.Now()
	if req.StartDate != "" {
		parsed, err := dateutil.Parse(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid start_date: " + err.Error()})
			return
		}
		start = parsed
	}

	result, err := h.opt.Suggest(c.Request.Context(), req.Orders, start)
	if err != nil {
		h.logger.Error("optimization failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "optimization failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

type applySuggestionsRequest struct {
	Orders      []model.Order      `json:"orders" binding:"required"`
	Suggestions []model.Suggestion `json:"suggestions" binding:"required"`
}

func (h *OptimizerHandler) Apply(c *gin.Context) {
	var req applySuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "orders and suggestions required"})
		return
	}

	orders := h.opt.ApplySuggestions(c.Request.Context(), req.Orders, req.Suggestions)
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
