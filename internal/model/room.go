package model

// Room represents a classroom ("aula") as served by the rooms directory.
// Rooms are read-only from the client's perspective; JSON field names
// follow the remote API.
type Room struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
	Capacity    int    `json:"capacidadEstudiantes"`
	Active      bool   `json:"estatus"`
	RoomTypeID  int64  `json:"tipoAulaId"`
	BuildingID  int64  `json:"edificioId"`
}
