package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aulas-booking-client/internal/model"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles the POST /api/auth/login request. The session is
// persisted locally so it survives a daemon restart.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.session.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Logout handles the POST /api/auth/logout request.
func (h *Handler) Logout(c *gin.Context) {
	h.session.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// GetUser handles the GET /api/user request. The stored session is the
// source; counters are refreshed from the server when reachable.
func (h *Handler) GetUser(c *gin.Context) {
	if !h.session.IsLoggedIn() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
		return
	}

	if h.monitor.IsOnline() {
		if err := h.session.Refresh(c.Request.Context()); err != nil {
			// Stale counters beat an error page; serve the stored copy.
			c.JSON(http.StatusOK, h.session.Current())
			return
		}
	}
	c.JSON(http.StatusOK, h.session.Current())
}

// UpdateUser handles the PUT /api/user request.
func (h *Handler) UpdateUser(c *gin.Context) {
	userID := h.session.UserID()
	if userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = userID

	user, err := h.remote.UpdateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword handles the POST /api/user/password request.
func (h *Handler) ChangePassword(c *gin.Context) {
	userID := h.session.UserID()
	if userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = userID

	if err := h.remote.ChangePassword(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
