package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prodplan/internal/calendar"
	"prodplan/internal/model"
	"prodplan/internal/mq"
	"prodplan/internal/planner"
	"prodplan/internal/repository"
	"prodplan/pkg/dateutil"
	"prodplan/pkg/metrics"
)

// EventPublisher is the slice of the MQ publisher the handlers need; events
// are best-effort and never fail a request.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type PlanHandler struct {
	planner   *planner.Planner
	repo      *repository.PlanRepository
	publisher EventPublisher
	logger    *zap.Logger
}

func NewPlanHandler(p *planner.Planner, repo *repository.PlanRepository, publisher EventPublisher, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{planner: p, repo: repo, publisher: publisher, logger: logger}
}

type buildPlanRequest struct {
	Orders    []model.Order `json:"orders" binding:"required"`
	StartDate string        `json:"start_date"`
}

func (h *PlanHandler) BuildPlan(c *gin.Context) {
	var req buildPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "orders required"})
		return
	}

	start, ok := h.parseStart(c, req.StartDate)
	if !ok {
		return
	}

	plan, err := h.planner.BuildPlan(c.Request.Context(), req.Orders, start)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}

	metrics.IncrementPlansBuilt("build")
	h.publishPlanEvents("build", plan)

	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

type reorderRequest struct {
	Machine   string        `json:"machine" binding:"required"`
	OrderIDs  []string      `json:"order_ids" binding:"required"`
	Orders    []model.Order `json:"orders" binding:"required"`
	StartDate string        `json:"start_date"`
}

func (h *PlanHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "machine, order_ids and orders required"})
		return
	}

	start, ok := h.parseStart(c, req.StartDate)
	if !ok {
		return
	}

	plan, err := h.planner.ReorderAndRecalculate(c.Request.Context(), req.Machine, req.OrderIDs, req.Orders, start)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}

	metrics.IncrementPlansBuilt("reorder")
	h.publishPlanEvents("reorder", plan)

	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

type moveOrderRequest struct {
	OrderID      string        `json:"order_id" binding:"required"`
	FromPosition *int          `json:"from_position" binding:"required"`
	ToPosition   *int          `json:"to_position" binding:"required"`
	Machine      string        `json:"machine" binding:"required"`
	Orders       []model.Order `json:"orders" binding:"required"`
	StartDate    string        `json:"start_date"`
}

func (h *PlanHandler) MoveOrder(c *gin.Context) {
	var req moveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "order_id, positions, machine and orders required"})
		return
	}

	start, ok := h.parseStart(c, req.StartDate)
	if !ok {
		return
	}

	plan, err := h.planner.MoveOrder(c.Request.Context(), req.OrderID, *req.FromPosition, *req.ToPosition, req.Machine, req.Orders, start)
	if err != nil {
		var posErr *planner.InvalidPositionError
		if errors.As(err, &posErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": posErr.Error()})
			return
		}
		h.respondPlanError(c, err)
		return
	}

	metrics.IncrementPlansBuilt("move")
	h.publishPlanEvents("move", plan)

	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

type savePlanRequest struct {
	Plan model.Plan `json:"plan" binding:"required"`
}

func (h *PlanHandler) SavePlan(c *gin.Context) {
	name := c.Param("name")

	var req savePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "plan required"})
		return
	}

	if err := h.repo.Save(c.Request.Context(), name, &req.Plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "name": name})
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	name := c.Param("name")

	plan, err := h.repo.Load(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "plans": plans})
}

// MachineTimeline renders one machine's sequence from a saved plan.
func (h *PlanHandler) MachineTimeline(c *gin.Context) {
	name := c.Param("name")
	machine := c.Param("machine")

	plan, err := h.repo.Load(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load plan"})
		return
	}

	timeline, err := planner.MachineTimeline(plan, machine)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"machine":     machine,
		"timeline":    timeline,
		"total_items": len(timeline),
	})
}

func (h *PlanHandler) parseStart(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now(), true
	}
	start, err := dateutil.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid start_date: " + err.Error()})
		return time.Time{}, false
	}
	return start, true
}

func (h *PlanHandler) respondPlanError(c *gin.Context, err error) {
	if errors.Is(err, calendar.ErrInvalidHoursPerDay) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.logger.Error("plan computation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "plan computation failed"})
}

func (h *PlanHandler) publishPlanEvents(operation string, plan *model.Plan) {
	if h.publisher == nil {
		return
	}

	err := h.publisher.Publish(mq.RoutingKeyPlanComputed, mq.PlanComputedPayload{
		Operation:      operation,
		TotalOrders:    plan.Summary.TotalOrders,
		TotalMachines:  plan.Summary.TotalMachines,
		TotalHours:     plan.Summary.TotalHours,
		CriticalOrders: plan.Summary.CriticalOrders,
		ComputedAt:     time.Now(),
	})
	if err != nil {
		h.logger.Warn("failed to publish plan.computed event", zap.Error(err))
	}

	for _, alert := range plan.Alerts {
		metrics.IncrementPlanAlert(alert.Severity)
		if alert.Severity != model.SeverityCritical {
			continue
		}
		err := h.publisher.Publish(mq.RoutingKeyPlanAlert, mq.PlanAlertPayload{
			Severity:     alert.Severity,
			OrderID:      alert.OrderID,
			Client:       alert.Client,
			Product:      alert.Product,
			Message:      alert.Message,
			DeliveryDate: alert.DeliveryDate,
			EndDate:      alert.EndDate,
		})
		if err != nil {
			h.logger.Warn("failed to publish plan.alert event",
				zap.String("order_id", alert.OrderID),
				zap.Error(err),
			)
		}
	}
}
