package model

// TimeSlot is one bookable hour block for a room on a given date.
// Times are wall-clock "HH:MM:SS" strings as the API serves them.
type TimeSlot struct {
	Start     string `json:"horaInicio"`
	End       string `json:"horaFin"`
	Available bool   `json:"disponible"`
}

// BookingRequest is the payload submitted to the remote booking API.
// It carries no identity until the server accepts it.
type BookingRequest struct {
	Date   string `json:"fecha"` // YYYY-MM-DD
	Start  string `json:"horaInicio"`
	End    string `json:"horaFin"`
	Reason string `json:"motivo"`
	UserID int64  `json:"usuarioId"`
	RoomID int64  `json:"aulaId"`
}

// Booking history statuses as the server reports them.
const (
	StatusConfirmed = "Confirmada"
	StatusCancelled = "Cancelada"
	StatusCompleted = "Completada"
	StatusPending   = "Pendiente"
)

// BookingHistory is one server-sourced history record with its embedded
// room summary. Never cached or mutated locally.
type BookingHistory struct {
	ID          int64  `json:"id"`
	Date        string `json:"fecha"`
	Start       string `json:"horaInicio"`
	End         string `json:"horaFin"`
	Reason      string `json:"motivo"`
	Status      string `json:"estado"`
	RequestedAt string `json:"fechaSolicitud"`
	UserID      int64  `json:"usuarioId"`
	RoomID      int64  `json:"aulaId"`
	Room        Room   `json:"aula"`
}
