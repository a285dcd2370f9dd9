package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NijasTp/trainup-sub002/internal/auth"

	"github.com/gin-gonic/gin"
)

// Handler is the polling fallback for recipients without a live socket.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListNotifications godoc
// @Summary      List notifications
// @Description  Returns stored notifications, newest first. Pass unread=true to filter.
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        unread  query     bool  false  "Only unread"
// @Success      200     {object}  gin.H
// @Router       /notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.repo.ListForRecipient(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        id  path      int  true  "Notification ID"
// @Success      200  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
