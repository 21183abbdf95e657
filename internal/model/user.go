package model

// User is the full profile record served by the users API.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"nombre"`
	LastName     string `json:"apellido"`
	Email        string `json:"email"`
	Enrollment   string `json:"matricula,omitempty"`
	Active       bool   `json:"estatus"`
	RegisteredAt string `json:"fechaRegistro"`
	RoleID       int64  `json:"rolId"`
}

// UpdateUserRequest is the payload for a profile update.
type UpdateUserRequest struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"nombre"`
	LastName        string `json:"apellido"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Active          bool   `json:"estatus"`
	RoleID          int64  `json:"rolId"`
}

// ChangePasswordRequest is the payload for a password change.
type ChangePasswordRequest struct {
	UserID             int64  `json:"usuarioId"`
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}
