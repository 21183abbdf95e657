package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aulas-booking-client/internal/parse"
)

// GetRooms handles the GET /api/rooms request. Only active rooms are
// returned; offline, the last cached directory is served instead.
func (h *Handler) GetRooms(c *gin.Context) {
	if err := h.wizard.LoadRooms(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wizard.Rooms())
}

// GetAvailability handles the GET /api/rooms/{room_id}/availability
// request. The query is read-only: it resolves the slot source (server
// truth online, fresh cache or the fixed schedule offline) without
// touching any in-flight booking pass.
func (h *Handler) GetAvailability(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = parse.Today()
	}

	slots, err := h.wizard.AvailabilityFor(c.Request.Context(), roomID, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}
