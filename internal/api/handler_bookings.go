package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/mw"
	"aulas-booking-client/internal/workflow"
)

type createBookingRequest struct {
	RoomID int64  `json:"aulaId" binding:"required"`
	Date   string `json:"fecha" binding:"required"`
	Start  string `json:"horaInicio" binding:"required"`
	End    string `json:"horaFin" binding:"required"`
	Reason string `json:"motivo" binding:"required"`
}

// CreateBooking handles the POST /api/bookings request. The whole pass
// runs from the request's own payload, so two clients submitting at
// once each get exactly the room, date and slot they asked for.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.wizard.Book(c.Request.Context(), req.RoomID, req.Date, req.Start, req.End, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	// The slot just left the market; cached availability is stale.
	if h.responses != nil {
		mw.Invalidate(h.responses, "/api/rooms")
	}

	if outcome == workflow.OutcomeQueued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.Status(http.StatusCreated)
}

// GetHistory handles the GET /api/bookings/history request. History is
// always refetched; it is never served from a local cache.
func (h *Handler) GetHistory(c *gin.Context) {
	userID := h.session.UserID()
	if userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
		return
	}

	list, err := h.remote.History(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []model.BookingHistory{}
	}
	c.JSON(http.StatusOK, list)
}
