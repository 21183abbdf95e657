package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aulas-booking-client/internal/model"
)

// Logical document keys. One JSON document is persisted per key.
const (
	keyPendingBookings   = "pending_bookings"
	keyRoomsCache        = "rooms_cache"
	keyAvailabilityCache = "availability_cache"
	keyLastSync          = "last_sync_timestamp"
	keyCurrentUser       = "current_user"
)

// availabilityMaxAge is how long a cached availability entry stays valid.
const availabilityMaxAge = time.Hour

// Store defines the interface for all local persistence operations.
type Store interface {
	DB() *gorm.DB

	AppendPending(ctx context.Context, req model.BookingRequest, room *model.Room) (model.PendingBooking, error)
	ListPending(ctx context.Context) ([]model.PendingBooking, error)
	CountPending(ctx context.Context) (int, error)
	SetStatus(ctx context.Context, id string, status model.SyncStatus, errorMessage string) error
	RemovePending(ctx context.Context, id string) error
	PruneSynced(ctx context.Context) error

	CacheRooms(ctx context.Context, rooms []model.Room) error
	CachedRooms(ctx context.Context) ([]model.Room, error)
	CacheAvailability(ctx context.Context, roomID int64, date string, slots []model.TimeSlot) error
	CachedAvailability(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, bool, error)

	TouchLastSync(ctx context.Context) error
	LastSync(ctx context.Context) (time.Time, bool, error)

	SaveSession(ctx context.Context, s *model.Session) error
	LoadSession(ctx context.Context) (*model.Session, bool, error)
	ClearSession(ctx context.Context) error

	ClearAll(ctx context.Context) error
}

// gormStore implements the Store interface over a documents table.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// --- Pending bookings ---

// AppendPending stamps a new queued booking and appends it to the
// persisted list. The id is unique within the process lifetime with
// overwhelming probability.
func (s *gormStore) AppendPending(ctx context.Context, req model.BookingRequest, room *model.Room) (model.PendingBooking, error) {
	pending := model.PendingBooking{
		BookingRequest: req,
		ID:             newPendingID(s.now()),
		CreatedAt:      s.now().UnixMilli(),
		SyncStatus:     model.SyncPending,
		Room:           room,
	}

	list, err := s.readPending(ctx)
	if err != nil {
		return model.PendingBooking{}, err
	}
	list = append(list, pending)

	if err := s.writePending(ctx, list); err != nil {
		return model.PendingBooking{}, err
	}
	log.Printf("booking queued offline: %s", pending.ID)
	return pending, nil
}

// ListPending returns all queued bookings in insertion order.
func (s *gormStore) ListPending(ctx context.Context) ([]model.PendingBooking, error) {
	return s.readPending(ctx)
}

// CountPending counts entries whose status is exactly pending.
func (s *gormStore) CountPending(ctx context.Context) (int, error) {
	list, err := s.readPending(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, p := range list {
		if p.SyncStatus == model.SyncPending {
			count++
		}
	}
	return count, nil
}

// SetStatus updates a queued booking's sync status. An unknown id is a
// silent no-op; the record may have been removed concurrently.
func (s *gormStore) SetStatus(ctx context.Context, id string, status model.SyncStatus, errorMessage string) error {
	list, err := s.readPending(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			list[i].SyncStatus = status
			if errorMessage != "" {
				list[i].ErrorMessage = errorMessage
			}
			return s.writePending(ctx, list)
		}
	}
	return nil
}

// RemovePending filters the id out of the persisted list. An absent id
// is a no-op.
func (s *gormStore) RemovePending(ctx context.Context, id string) error {
	list, err := s.readPending(ctx)
	if err != nil {
		return err
	}
	filtered := list[:0]
	for _, p := range list {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	return s.writePending(ctx, filtered)
}

// PruneSynced removes every entry that has already been synced.
func (s *gormStore) PruneSynced(ctx context.Context) error {
	list, err := s.readPending(ctx)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, p := range list {
		if p.SyncStatus != model.SyncSynced {
			kept = append(kept, p)
		}
	}
	return s.writePending(ctx, kept)
}

func (s *gormStore) readPending(ctx context.Context) ([]model.PendingBooking, error) {
	var list []model.PendingBooking
	if err := s.readDoc(ctx, keyPendingBookings, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *gormStore) writePending(ctx context.Context, list []model.PendingBooking) error {
	if list == nil {
		list = []model.PendingBooking{}
	}
	return s.writeDoc(ctx, keyPendingBookings, list)
}

// --- Rooms cache ---

func (s *gormStore) CacheRooms(ctx context.Context, rooms []model.Room) error {
	return s.writeDoc(ctx, keyRoomsCache, rooms)
}

func (s *gormStore) CachedRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := s.readDoc(ctx, keyRoomsCache, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// --- Availability cache ---

// availabilityEntry is one cached slot list plus its write timestamp.
type availabilityEntry struct {
	Data      []model.TimeSlot `json:"data"`
	Timestamp int64            `json:"timestamp"` // unix milliseconds
}

func availabilityKey(roomID int64, date string) string {
	return fmt.Sprintf("%d_%s", roomID, date)
}

func (s *gormStore) CacheAvailability(ctx context.Context, roomID int64, date string, slots []model.TimeSlot) error {
	cache, err := s.readAvailability(ctx)
	if err != nil {
		return err
	}
	cache[availabilityKey(roomID, date)] = availabilityEntry{
		Data:      slots,
		Timestamp: s.now().UnixMilli(),
	}
	return s.writeDoc(ctx, keyAvailabilityCache, cache)
}

// CachedAvailability returns the cached slots for a room and date, or
// ok=false when nothing fresh is stored. Entries older than one hour
// are treated as missing, never returned stale.
func (s *gormStore) CachedAvailability(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, bool, error) {
	cache, err := s.readAvailability(ctx)
	if err != nil {
		return nil, false, err
	}
	entry, ok := cache[availabilityKey(roomID, date)]
	if !ok {
		return nil, false, nil
	}
	age := s.now().UnixMilli() - entry.Timestamp
	if age >= availabilityMaxAge.Milliseconds() {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (s *gormStore) readAvailability(ctx context.Context) (map[string]availabilityEntry, error) {
	cache := make(map[string]availabilityEntry)
	if err := s.readDoc(ctx, keyAvailabilityCache, &cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// --- Last sync ---

func (s *gormStore) TouchLastSync(ctx context.Context) error {
	return s.writeDoc(ctx, keyLastSync, s.now().UnixMilli())
}

func (s *gormStore) LastSync(ctx context.Context) (time.Time, bool, error) {
	var millis int64
	found, err := s.readDocFound(ctx, keyLastSync, &millis)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return time.UnixMilli(millis), true, nil
}

// --- Session ---

func (s *gormStore) SaveSession(ctx context.Context, sess *model.Session) error {
	return s.writeDoc(ctx, keyCurrentUser, sess)
}

func (s *gormStore) LoadSession(ctx context.Context) (*model.Session, bool, error) {
	var sess model.Session
	found, err := s.readDocFound(ctx, keyCurrentUser, &sess)
	if err != nil || !found {
		return nil, false, err
	}
	return &sess, true, nil
}

func (s *gormStore) ClearSession(ctx context.Context) error {
	return s.deleteDoc(ctx, keyCurrentUser)
}

// --- Maintenance ---

// ClearAll wipes every managed document.
func (s *gormStore) ClearAll(ctx context.Context) error {
	keys := []string{keyPendingBookings, keyRoomsCache, keyAvailabilityCache, keyLastSync, keyCurrentUser}
	for _, key := range keys {
		if err := s.deleteDoc(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// --- Document helpers ---

// readDoc decodes the document for key into out. A missing document
// leaves out untouched; callers treat that as "store is empty".
func (s *gormStore) readDoc(ctx context.Context, key string, out any) error {
	_, err := s.readDocFound(ctx, key, out)
	return err
}

func (s *gormStore) readDocFound(ctx context.Context, key string, out any) (bool, error) {
	var doc model.Document
	err := s.db.WithContext(ctx).First(&doc, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read document %q: %w", key, err)
	}
	if err := json.Unmarshal(doc.Value, out); err != nil {
		return false, fmt.Errorf("failed to decode document %q: %w", key, err)
	}
	return true, nil
}

func (s *gormStore) writeDoc(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %w", key, err)
	}
	doc := model.Document{Key: key, Value: raw, UpdatedAt: s.now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to write document %q: %w", key, err)
	}
	return nil
}

func (s *gormStore) deleteDoc(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&model.Document{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete document %q: %w", key, err)
	}
	return nil
}

// newPendingID builds a time-prefixed identifier for a queued booking.
func newPendingID(now time.Time) string {
	return fmt.Sprintf("offline_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
