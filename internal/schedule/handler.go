package schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/NijasTp/trainup-sub002/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{service: NewService(NewRepository(db))}
}

func NewHandlerWithService(service Service) *Handler {
	return &Handler{service: service}
}

type dayActiveRequest struct {
	WeekStart time.Time `json:"week_start" binding:"required"`
	Day       string    `json:"day" binding:"required"`
	IsActive  bool      `json:"is_active"`
}

type addSlotRequest struct {
	WeekStart time.Time `json:"week_start" binding:"required"`
	Day       string    `json:"day" binding:"required"`
	StartTime string    `json:"start_time" binding:"required"`
	EndTime   string    `json:"end_time" binding:"required"`
}

type updateSlotRequest struct {
	WeekStart time.Time `json:"week_start" binding:"required"`
	Day       string    `json:"day" binding:"required"`
	Field     string    `json:"field" binding:"required,oneof=start_time end_time"`
	Value     string    `json:"value" binding:"required"`
}

func weekStartParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("week_start")
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GetWeeklySchedule godoc
// @Summary      Get weekly schedule
// @Description  Returns the trainer's weekly availability, including unsaved edits.
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        week_start  query     string  true  "Week start date (YYYY-MM-DD)"
// @Success      200         {object}  WeeklySchedule
// @Failure      400         {object}  gin.H
// @Router       /trainer/weekly-schedule [get]
func (h *Handler) GetWeeklySchedule(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	weekStart, ok := weekStartParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start is required (YYYY-MM-DD)"})
		return
	}

	sched, err := h.service.GetSchedule(c.Request.Context(), trainerID, weekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load schedule"})
		return
	}

	c.JSON(http.StatusOK, sched)
}

// SaveWeeklySchedule godoc
// @Summary      Save weekly schedule
// @Description  Validates and commits the whole week, then materializes bookable slots.
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      SaveScheduleRequest  true  "Schedule payload"
// @Success      200   {object}  SaveScheduleResponse
// @Failure      400   {object}  gin.H
// @Router       /trainer/weekly-schedule [post]
func (h *Handler) SaveWeeklySchedule(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, err := h.service.Save(c.Request.Context(), trainerID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrIntervalOverlap):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Schedule has overlapping slots"})
		case errors.Is(err, ErrDurationInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Every slot must be exactly one hour"})
		case errors.Is(err, ErrCapacityExceeded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A day may have at most 5 slots"})
		case errors.Is(err, ErrBadTimeFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Times must be in HH:MM format"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, SaveScheduleResponse{Schedule: sched})
}

// SetDayActive godoc
// @Summary      Toggle day availability
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dayActiveRequest  true  "Day toggle payload"
// @Success      200   {object}  WeeklySchedule
// @Failure      400   {object}  gin.H
// @Router       /trainer/weekly-schedule/day-active [post]
func (h *Handler) SetDayActive(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dayActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, err := h.service.SetDayActive(c.Request.Context(), trainerID, req.WeekStart, req.Day, req.IsActive)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sched)
}

// AddSlot godoc
// @Summary      Add availability slot
// @Description  Adds a one-hour slot to a day of the working copy.
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      addSlotRequest  true  "Slot payload"
// @Success      200   {object}  WeeklySchedule
// @Failure      400   {object}  gin.H
// @Failure      409   {object}  gin.H
// @Router       /trainer/weekly-schedule/slots [post]
func (h *Handler) AddSlot(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req addSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot := TimeSlot{StartTime: req.StartTime, EndTime: req.EndTime}
	sched, err := h.service.AddSlot(c.Request.Context(), trainerID, req.WeekStart, req.Day, slot)
	if err != nil {
		switch {
		case errors.Is(err, ErrIntervalOverlap):
			c.JSON(http.StatusConflict, gin.H{"error": "Slot overlaps an existing slot"})
		case errors.Is(err, ErrCapacityExceeded):
			c.JSON(http.StatusConflict, gin.H{"error": "A day may have at most 5 slots"})
		case errors.Is(err, ErrPastTime):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot must start after the current time"})
		case errors.Is(err, ErrDurationInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot must be exactly one hour"})
		case errors.Is(err, ErrBadTimeFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Times must be in HH:MM format"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add slot"})
		}
		return
	}

	c.JSON(http.StatusOK, sched)
}

// RemoveSlot godoc
// @Summary      Remove availability slot
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        slotID      path      string  true  "Slot ID"
// @Param        week_start  query     string  true  "Week start date (YYYY-MM-DD)"
// @Param        day         query     string  true  "Weekday"
// @Success      200         {object}  WeeklySchedule
// @Failure      404         {object}  gin.H
// @Router       /trainer/weekly-schedule/slots/{slotID} [delete]
func (h *Handler) RemoveSlot(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	weekStart, ok := weekStartParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start is required (YYYY-MM-DD)"})
		return
	}

	day := c.Query("day")
	if day == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day is required"})
		return
	}

	sched, err := h.service.RemoveSlot(c.Request.Context(), trainerID, weekStart, day, c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}

	c.JSON(http.StatusOK, sched)
}

// UpdateSlot godoc
// @Summary      Update availability slot
// @Description  Edits one endpoint of a slot. Overlaps are returned as warnings; the save endpoint rejects any that remain.
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotID  path      string             true  "Slot ID"
// @Param        body    body      updateSlotRequest  true  "Update payload"
// @Success      200     {object}  SaveScheduleResponse
// @Failure      400     {object}  gin.H
// @Router       /trainer/weekly-schedule/slots/{slotID} [patch]
func (h *Handler) UpdateSlot(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req updateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, warnings, err := h.service.UpdateSlot(
		c.Request.Context(), trainerID, req.WeekStart, req.Day, c.Param("slotID"), req.Field, req.Value,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SaveScheduleResponse{Schedule: sched, Warnings: warnings})
}
