package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"aulas-booking-client/internal/connectivity"
	"aulas-booking-client/internal/gateway"
	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/store"
	"aulas-booking-client/internal/workflow"
)

// RemoteAPI is the slice of the gateway the shell surface calls outside
// the wizard.
type RemoteAPI interface {
	History(ctx context.Context, userID int64) ([]model.BookingHistory, error)
	UpdateUser(ctx context.Context, req model.UpdateUserRequest) (*model.User, error)
	ChangePassword(ctx context.Context, req model.ChangePasswordRequest) error
}

// SessionControl is the slice of the session manager the shell surface needs.
type SessionControl interface {
	UserID() int64
	IsLoggedIn() bool
	Current() *model.Session
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Refresh(ctx context.Context) error
	Invalidate(ctx context.Context)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	wizard    *workflow.Wizard
	store     store.Store
	monitor   *connectivity.Monitor
	remote    RemoteAPI
	session   SessionControl
	webpush   *webpush.Options
	responses *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(w *workflow.Wizard, s store.Store, m *connectivity.Monitor, remote RemoteAPI, sess SessionControl, webpushOptions *webpush.Options, responses *cache.Cache) *Handler {
	return &Handler{
		wizard:    w,
		store:     s,
		monitor:   m,
		remote:    remote,
		session:   sess,
		webpush:   webpushOptions,
		responses: responses,
	}
}

// writeError maps wizard and gateway failures onto HTTP statuses for the
// shell. Remote API errors keep their status so the webview sees what the
// server said.
func writeError(c *gin.Context, err error) {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.Message})
		return
	}

	switch {
	case errors.Is(err, workflow.ErrNoRoomSelected),
		errors.Is(err, workflow.ErrIncompleteForm):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrRoomNotAvailable),
		errors.Is(err, workflow.ErrSlotUnavailable),
		errors.Is(err, workflow.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrUnknownBooking):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrOffline):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
