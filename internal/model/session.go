package model

// Session is the logged-in user state returned by the auth API and
// persisted locally between runs.
type Session struct {
	UserID        int64            `json:"idUsuario"`
	Name          string           `json:"nombre"`
	TotalBookings int              `json:"totalReservas"`
	ActiveToday   int              `json:"totalActivasHoy"`
	Upcoming      []BookingHistory `json:"proximasReservas"`
}
