package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey hands the shell the key it needs to register a push
// subscription. VAPID keys are optional for the daemon: without them
// sync outcomes are still logged, so the shell polls this endpoint and
// skips registration on 503 instead of treating it as a failure.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notices disabled; VAPID keys not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"publicKey": h.webpush.VAPIDPublicKey})
}
