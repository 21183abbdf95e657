package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"aulas-booking-client/config"
	"aulas-booking-client/internal/connectivity"
	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/store"
)

// Client talks to the remote booking API and normalizes every failure
// into an *APIError the workflow can branch on.
type Client struct {
	cfg     *config.APIConfig
	client  *http.Client
	monitor *connectivity.Monitor
	store   store.Store
}

// NewClient creates a gateway client. The monitor and store are needed
// for the offline short-circuit on booking creation.
func NewClient(cfg *config.APIConfig, monitor *connectivity.Monitor, s store.Store) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Gateway will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		monitor: monitor,
		store:   s,
	}
}

// Rooms fetches the full classroom directory.
func (c *Client) Rooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/Aula", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Availability fetches the slot list for one room and date. Server
// order is preserved; caching is the caller's decision.
func (c *Client) Availability(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
	u := fmt.Sprintf("%s/SolicitudApartado/GetDisponibilidad?aulaId=%d&fecha=%s",
		c.cfg.BaseURL, roomID, url.QueryEscape(date))
	var slots []model.TimeSlot
	if err := c.do(ctx, http.MethodGet, u, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// CreateBooking submits a booking request. When the monitor reports
// offline it never touches the transport: the request is appended to
// the local queue and the StoredOffline outcome is returned through the
// single failure channel.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest, room *model.Room) error {
	if !c.monitor.IsOnline() {
		if _, err := c.store.AppendPending(ctx, req, room); err != nil {
			return fmt.Errorf("failed to queue booking offline: %w", err)
		}
		return &APIError{
			Message:       "Reserva guardada localmente. Se enviará cuando haya conexión.",
			StoredOffline: true,
		}
	}
	return c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/SolicitudApartado/CreateSolicitud", req, nil)
}

// Resubmit sends a previously queued booking request to the server.
// Unlike CreateBooking it never short-circuits; callers decide when a
// retry is worth attempting.
func (c *Client) Resubmit(ctx context.Context, req model.BookingRequest) error {
	return c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/SolicitudApartado/CreateSolicitud", req, nil)
}

// History fetches the user's booking history, server order preserved.
func (c *Client) History(ctx context.Context, userID int64) ([]model.BookingHistory, error) {
	u := fmt.Sprintf("%s/SolicitudApartado/GetHistorial?usuarioId=%d", c.cfg.BaseURL, userID)
	var records []model.BookingHistory
	if err := c.do(ctx, http.MethodGet, u, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Login authenticates against the remote auth API.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sess model.Session
	if err := c.do(ctx, http.MethodPost, c.cfg.AuthBaseURL+"/Login", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// UserInfo fetches the current aggregate counters for a user.
func (c *Client) UserInfo(ctx context.Context, userID int64) (*model.Session, error) {
	u := fmt.Sprintf("%s/GetInfoUser?id=%d", c.cfg.AuthBaseURL, userID)
	var sess model.Session
	if err := c.do(ctx, http.MethodGet, u, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// UpdateUser submits a profile update.
func (c *Client) UpdateUser(ctx context.Context, req model.UpdateUserRequest) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPut, c.cfg.BaseURL+"/Usuario/UpdateUser", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword submits a password change.
func (c *Client) ChangePassword(ctx context.Context, req model.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, c.cfg.AuthBaseURL+"/ChangePassword", req, nil)
}

// do performs one remote call and decodes the response into out when
// given. All failures come back as *APIError.
func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return normalize(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to unmarshal api response: %w", err)
		}
	}
	return nil
}
