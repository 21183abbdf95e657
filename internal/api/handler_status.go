package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// statusResponse is the daemon health view the shell polls.
type statusResponse struct {
	Online       bool       `json:"online"`
	PendingCount int        `json:"pendingCount"`
	LastSync     *time.Time `json:"lastSync"`
	LoggedIn     bool       `json:"loggedIn"`
}

// GetStatus handles the GET /api/status request.
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.store.CountPending(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := statusResponse{
		Online:       h.monitor.IsOnline(),
		PendingCount: count,
		LoggedIn:     h.session.IsLoggedIn(),
	}
	if ts, found, err := h.store.LastSync(ctx); err == nil && found {
		resp.LastSync = &ts
	}

	c.JSON(http.StatusOK, resp)
}

type networkReport struct {
	Online *bool `json:"online" binding:"required"`
}

// ReportNetwork handles the POST /api/network request. The shell owns
// the platform network signal and forwards every change here; the
// monitor broadcasts the transition to its subscribers.
func (h *Handler) ReportNetwork(c *gin.Context) {
	var req networkReport
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.monitor.Set(*req.Online)
	c.Status(http.StatusNoContent)
}
