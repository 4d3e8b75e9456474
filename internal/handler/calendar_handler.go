package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prodplan/internal/calendar"
)

type CalendarHandler struct {
	cal    *calendar.Calendar
	logger *zap.Logger
}

func NewCalendarHandler(cal *calendar.Calendar, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{cal: cal, logger: logger}
}

type holidaysRequest struct {
	Dates []string `json:"dates" binding:"required"`
}

func (h *CalendarHandler) AddHolidays(c *gin.Context) {
	var req holidaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "dates required"})
		return
	}

	res := h.cal.AddHolidays(c.Request.Context(), req.Dates)
	h.logger.Info("holidays added",
		zap.Int("added", len(res.Added)),
		zap.Int("invalid", len(res.Invalid)),
	)

	c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
}

func (h *CalendarHandler) RemoveHolidays(c *gin.Context) {
	var req holidaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "dates required"})
		return
	}

	res := h.cal.RemoveHolidays(c.Request.Context(), req.Dates)
	c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
}

func (h *CalendarHandler) ListHolidays(c *gin.Context) {
	holidays := h.cal.Holidays()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"holidays": holidays,
		"total":    len(holidays),
	})
}

type weekendPolicyRequest struct {
	WorkSaturday *bool `json:"work_saturday" binding:"required"`
	WorkSunday   *bool `json:"work_sunday" binding:"required"`
}

func (h *CalendarHandler) SetWeekendPolicy(c *gin.Context) {
	var req weekendPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "work_saturday and work_sunday required"})
		return
	}

	h.cal.SetWeekendPolicy(c.Request.Context(), *req.WorkSaturday, *req.WorkSunday)
	c.JSON(http.StatusOK, gin.H{"success": true, "policy": h.cal.Policy()})
}

type workingWeekendsRequest struct {
	Saturdays []string `json:"saturdays"`
	Sundays   []string `json:"sundays"`
}

func (h *CalendarHandler) SetWorkingWeekendDates(c *gin.Context) {
	var req workingWeekendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	h.cal.SetWorkingWeekendDates(c.Request.Context(), req.Saturdays, req.Sundays)
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"working_saturdays": len(req.Saturdays),
		"working_sundays":   len(req.Sundays),
	})
}

func (h *CalendarHandler) WeekendsInYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid year"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "weekends": h.cal.WeekendsInYear(year)})
}

func (h *CalendarHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": h.cal.Summary()})
}

func (h *CalendarHandler) Clear(c *gin.Context) {
	h.cal.Clear(c.Request.Context())
	h.logger.Info("calendar configuration cleared")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
