package plan

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NijasTp/trainup-sub002/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// PurchasePlan godoc
// @Summary      Purchase a trainer plan
// @Description  Creates a metered subscription between the authenticated user and a trainer.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      PurchasePlanRequest  true  "Plan to purchase"
// @Success      201   {object}  UserPlan
// @Failure      400   {object}  gin.H
// @Router       /user/plans [post]
func (h *Handler) PurchasePlan(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req PurchasePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trainer_id and plan_type are required"})
		return
	}

	plan, err := h.service.Purchase(c.Request.Context(), userID, req.TrainerID, req.PlanType)
	if err != nil {
		if errors.Is(err, ErrUnknownPlanType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan type"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purchase plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// ListMyPlans godoc
// @Summary      List active plans
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /user/plans [get]
func (h *Handler) ListMyPlans(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	plans, err := h.service.ListMyPlans(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetPlan godoc
// @Summary      Active plan for a trainer
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        trainerID  path      int  true  "Trainer ID"
// @Success      200        {object}  UserPlan
// @Failure      404        {object}  gin.H
// @Router       /user/plans/{trainerID} [get]
func (h *Handler) GetPlan(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	trainerID, err := strconv.Atoi(c.Param("trainerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trainer ID"})
		return
	}

	plan, err := h.service.GetPlan(c.Request.Context(), userID, trainerID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active plan for this trainer"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// CancelPlan godoc
// @Summary      Cancel a plan
// @Description  Deactivates the plan and reports the prorated refund amount.
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        trainerID  path      int  true  "Trainer ID"
// @Success      200        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /user/plans/{trainerID}/cancel [post]
func (h *Handler) CancelPlan(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	trainerID, err := strconv.Atoi(c.Param("trainerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trainer ID"})
		return
	}

	refund, err := h.service.Cancel(c.Request.Context(), userID, trainerID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active plan for this trainer"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan cancelled", "refund_cents": refund})
}
