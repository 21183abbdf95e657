package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/mw"
)

// ListQueue handles the GET /api/queue request. It returns every queued
// booking with its sync status so the shell can render the pending list.
func (h *Handler) ListQueue(c *gin.Context) {
	list, err := h.store.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []model.PendingBooking{}
	}
	c.JSON(http.StatusOK, list)
}

// RetryQueued handles the POST /api/queue/{id}/retry request. This is
// the user-triggered retry of one queued booking.
func (h *Handler) RetryQueued(c *gin.Context) {
	id := c.Param("id")
	if err := h.wizard.RetryPending(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	if h.responses != nil {
		mw.Invalidate(h.responses, "/api/rooms")
	}
	c.Status(http.StatusNoContent)
}

// DeleteQueued handles the DELETE /api/queue/{id} request. Removing an
// unknown id is a no-op so a double delete from the shell is harmless.
func (h *Handler) DeleteQueued(c *gin.Context) {
	if err := h.store.RemovePending(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
