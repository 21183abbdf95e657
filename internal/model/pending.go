package model

// SyncStatus is the lifecycle tag of a locally queued booking.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// PendingBooking is a BookingRequest queued locally while offline,
// plus the bookkeeping needed to reconcile it later.
type PendingBooking struct {
	BookingRequest

	ID           string     `json:"id"`
	CreatedAt    int64      `json:"timestamp"` // unix milliseconds
	SyncStatus   SyncStatus `json:"syncStatus"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	Room         *Room      `json:"aulaInfo,omitempty"` // snapshot for display
}
