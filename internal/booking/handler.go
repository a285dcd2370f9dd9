package booking

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

// BookSession godoc
// @Summary      Request a session
// @Description  Adds a pending session request to an open slot. Several users may request the same slot; the trainer picks one.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      BookSessionRequest  true  "Slot to request"
// @Success      201   {object}  SessionRequest
// @Failure      400   {object}  gin.H
// @Failure      404   {object}  gin.H
// @Failure      409   {object}  gin.H
// @Router       /user/book-session [post]
func (h *Handler) BookSession(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_id is required"})
		return
	}

	request, err := h.service.RequestBooking(c.Request.Context(), userID, req.SlotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		case errors.Is(err, ErrSlotAlreadyBooked):
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is already booked"})
		case errors.Is(err, ErrAlreadyRequested):
			c.JSON(http.StatusConflict, gin.H{"error": "You already requested this slot"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request session"})
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ApproveRequest godoc
// @Summary      Approve a session request
// @Description  Books the slot for the chosen user and auto-rejects every other pending request on it.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  gin.H
// @Failure      403     {object}  gin.H
// @Failure      404     {object}  gin.H
// @Failure      409     {object}  gin.H
// @Router       /trainer/session-requests/{slotID}/approve/{userID} [post]
func (h *Handler) ApproveRequest(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	slotID, userID, ok := slotAndUserParams(c)
	if !ok {
		return
	}

	err := h.service.ApproveRequest(c.Request.Context(), trainerID, slotID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		case errors.Is(err, ErrNotSlotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own slots"})
		case errors.Is(err, ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session request not found"})
		case errors.Is(err, ErrSlotAlreadyBooked):
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is already booked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session request approved"})
}

// RejectRequest godoc
// @Summary      Reject a session request
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotID  path      int                true  "Slot ID"
// @Param        userID  path      int                true  "User ID"
// @Param        body    body      RejectRequestBody  true  "Rejection reason"
// @Success      200     {object}  gin.H
// @Failure      400     {object}  gin.H
// @Failure      403     {object}  gin.H
// @Failure      404     {object}  gin.H
// @Router       /trainer/session-requests/{slotID}/reject/{userID} [post]
func (h *Handler) RejectRequest(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	slotID, userID, ok := slotAndUserParams(c)
	if !ok {
		return
	}

	var body RejectRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rejection_reason is required"})
		return
	}

	err := h.service.RejectRequest(c.Request.Context(), trainerID, slotID, userID, body.RejectionReason)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyReason):
			c.JSON(http.StatusBadRequest, gin.H{"error": "rejection_reason is required"})
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		case errors.Is(err, ErrNotSlotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own slots"})
		case errors.Is(err, ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session request not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session request rejected"})
}

// ListTrainerSlots godoc
// @Summary      List trainer slots
// @Description  Returns the trainer's materialized slots with their session requests.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /trainer/slots [get]
func (h *Handler) ListTrainerSlots(c *gin.Context) {
	trainerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	slots, err := h.service.GetTrainerSlots(c.Request.Context(), trainerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// CancelBooking godoc
// @Summary      Cancel a booked session
// @Description  Releases the booked claim. Either participant may cancel.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      200     {object}  gin.H
// @Failure      400     {object}  gin.H
// @Failure      403     {object}  gin.H
// @Failure      404     {object}  gin.H
// @Router       /bookings/{slotID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	callerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot ID"})
		return
	}

	err = h.service.CancelBooking(c.Request.Context(), callerID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own sessions"})
		case errors.Is(err, ErrSlotNotBooked):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot is not booked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}

// VideoCallRoom godoc
// @Summary      Video call room for a slot
// @Description  Returns the signaling room id once the join window has opened.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      200     {object}  VideoCallResponse
// @Failure      403     {object}  gin.H
// @Failure      404     {object}  gin.H
// @Router       /video-call/slot/{slotID} [get]
func (h *Handler) VideoCallRoom(c *gin.Context) {
	callerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot ID"})
		return
	}

	roomID, err := h.service.VideoCallRoom(c.Request.Context(), callerID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this session"})
		case errors.Is(err, ErrJoinWindowClosed):
			c.JSON(http.StatusForbidden, gin.H{"error": "The session join window is closed"})
		case errors.Is(err, ErrVideoNotInPlan):
			c.JSON(http.StatusForbidden, gin.H{"error": "Video calls are not included in your plan"})
		case errors.Is(err, ErrVideoQuotaExhausted):
			c.JSON(http.StatusForbidden, gin.H{"error": "Video call allowance is used up"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve video call"})
		}
		return
	}

	var resp VideoCallResponse
	resp.VideoCall.RoomID = roomID
	c.JSON(http.StatusOK, resp)
}

func slotAndUserParams(c *gin.Context) (int, int, bool) {
	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot ID"})
		return 0, 0, false
	}

	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, 0, false
	}

	return slotID, userID, true
}
