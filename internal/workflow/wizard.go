package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"aulas-booking-client/internal/connectivity"
	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/parse"
	"aulas-booking-client/internal/store"
)

// Wizard steps. The numeric field drives which state is active.
const (
	StepSelectRoom = 1
	StepSelectDate = 2
	StepSelectSlot = 3
	StepConfirm    = 4
)

var (
	ErrNoRoomSelected   = errors.New("no room selected")
	ErrRoomNotAvailable = errors.New("room is not in the active room list")
	ErrSlotUnavailable  = errors.New("slot is not available")
	ErrIncompleteForm   = errors.New("wizard form is incomplete")
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrSyncInProgress   = errors.New("booking is already syncing")
	ErrOffline          = errors.New("no network connection")
	ErrUnknownBooking   = errors.New("queued booking not found")
)

// Outcome distinguishes the two success-equivalent confirmation paths.
type Outcome int

const (
	OutcomeNone    Outcome = iota
	OutcomeCreated         // accepted by the server
	OutcomeQueued          // stored locally, will sync on reconnect
)

// BookingAPI is the slice of the gateway the wizard needs.
type BookingAPI interface {
	Rooms(ctx context.Context) ([]model.Room, error)
	Availability(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error)
	CreateBooking(ctx context.Context, req model.BookingRequest, room *model.Room) error
	Resubmit(ctx context.Context, req model.BookingRequest) error
}

// SessionAPI is the slice of the session manager the wizard needs.
type SessionAPI interface {
	UserID() int64
	Refresh(ctx context.Context) error
	Invalidate(ctx context.Context)
}

// Notifier receives every user-visible outcome of the wizard. Nothing
// terminal is ever swallowed silently.
type Notifier interface {
	Toast(message string)
	Alert(header, message string)
	Success(message string)
}

// Gateway error classification, injected so the wizard does not import
// the gateway package directly.
type ErrorClass struct {
	Conflict      func(error) bool
	StoredOffline func(error) bool
	Unauthorized  func(error) bool
	Transport     func(error) bool
}

// Wizard is the four-step booking workflow. All operations serialize on
// one mutex, so no two handlers mutate wizard state interleaved.
type Wizard struct {
	store    store.Store
	monitor  *connectivity.Monitor
	api      BookingAPI
	session  SessionAPI
	notifier Notifier
	classify ErrorClass
	dispatch func(id string) // hands a queued booking to the sync pool

	mu    sync.Mutex
	step  int
	rooms []model.Room
	room  *model.Room
	date  string
	slots []model.TimeSlot
	slot  *model.TimeSlot

	subID  int
	subCh  <-chan bool
	closed chan struct{}
}

// New creates a wizard at step 1 with today's date preselected.
func New(s store.Store, monitor *connectivity.Monitor, api BookingAPI, sess SessionAPI, notifier Notifier, classify ErrorClass) *Wizard {
	return &Wizard{
		store:    s,
		monitor:  monitor,
		api:      api,
		session:  sess,
		notifier: notifier,
		classify: classify,
		step:     StepSelectRoom,
		date:     parse.Today(),
	}
}

// SetDispatcher wires the sync worker pool. Optional; without it,
// reconnect only notifies and queued bookings wait for manual retry.
func (w *Wizard) SetDispatcher(dispatch func(id string)) {
	w.dispatch = dispatch
}

// Activate subscribes to connectivity transitions and loads the room
// list. Call Close when the hosting view goes away.
func (w *Wizard) Activate(ctx context.Context) {
	w.subID, w.subCh = w.monitor.Subscribe()
	w.closed = make(chan struct{})

	go func() {
		for online := range w.subCh {
			select {
			case <-w.closed:
				return
			default:
			}
			if online {
				w.Reconcile(context.Background())
			}
		}
	}()

	w.ViewActivated(ctx)
}

// Close unsubscribes from the monitor. In-flight operations may still
// complete but their results are discarded with the wizard.
func (w *Wizard) Close() {
	if w.closed != nil {
		close(w.closed)
		w.closed = nil
	}
	w.monitor.Unsubscribe(w.subID)
}

// ViewActivated refreshes view-backing data. The host shell calls it
// every time the booking view is foregrounded.
func (w *Wizard) ViewActivated(ctx context.Context) {
	if err := w.LoadRooms(ctx); err != nil {
		log.Printf("error loading rooms: %v", err)
	}
}

// LoadRooms fetches the room directory, keeps only active rooms, and
// refreshes the local cache. When the fetch fails, the cached list is
// served instead; an empty cache surfaces the failure to the user.
func (w *Wizard) LoadRooms(ctx context.Context) error {
	rooms, err := w.api.Rooms(ctx)
	if err != nil {
		cached, cacheErr := w.store.CachedRooms(ctx)
		if cacheErr == nil && len(cached) > 0 {
			w.setRooms(activeOnly(cached))
			return nil
		}
		w.notifier.Toast("Error al cargar las aulas")
		return err
	}

	active := activeOnly(rooms)
	if err := w.store.CacheRooms(ctx, rooms); err != nil {
		log.Printf("error caching rooms: %v", err)
	}
	w.setRooms(active)
	return nil
}

func (w *Wizard) setRooms(rooms []model.Room) {
	w.mu.Lock()
	w.rooms = rooms
	w.mu.Unlock()
}

func activeOnly(rooms []model.Room) []model.Room {
	active := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Active {
			active = append(active, r)
		}
	}
	return active
}

// Rooms returns the currently loaded active-room list.
func (w *Wizard) Rooms() []model.Room {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Room, len(w.rooms))
	copy(out, w.rooms)
	return out
}

// Step returns the active wizard step.
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Slots returns the slot list adopted at step 3.
func (w *Wizard) Slots() []model.TimeSlot {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.TimeSlot, len(w.slots))
	copy(out, w.slots)
	return out
}

// SelectRoom picks a room from the loaded active list and advances to
// date selection. Any previously chosen slots are cleared.
func (w *Wizard) SelectRoom(roomID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.rooms {
		if w.rooms[i].ID == roomID {
			room := w.rooms[i]
			w.room = &room
			w.slots = nil
			w.slot = nil
			w.step = StepSelectDate
			return nil
		}
	}
	return ErrRoomNotAvailable
}

// SelectDate adopts a booking date and fetches its availability.
// Online, the server is authoritative and a server-side failure keeps
// the user on step 2. Offline, or when the call never reaches the
// server, the fixed fallback schedule is adopted instead so the user
// is never blocked.
func (w *Wizard) SelectDate(ctx context.Context, date string) ([]model.TimeSlot, error) {
	w.mu.Lock()
	room := w.room
	w.mu.Unlock()
	if room == nil {
		return nil, ErrNoRoomSelected
	}
	if _, err := parse.ParseDate(date); err != nil {
		return nil, err
	}

	slots, err := w.availabilityFor(ctx, room, date)
	if err != nil {
		return nil, err
	}
	w.adoptSlots(date, slots)
	return slots, nil
}

// availabilityFor resolves the slot source for one room and date
// without touching wizard state. Online, the server is authoritative.
// Offline, or when the call never reaches the server, a fresh cached
// copy wins over the fixed schedule; the sources are never blended.
func (w *Wizard) availabilityFor(ctx context.Context, room *model.Room, date string) ([]model.TimeSlot, error) {
	if w.monitor.IsOnline() {
		slots, err := w.api.Availability(ctx, room.ID, date)
		if err == nil {
			if cacheErr := w.store.CacheAvailability(ctx, room.ID, date, slots); cacheErr != nil {
				log.Printf("error caching availability: %v", cacheErr)
			}
			return slots, nil
		}
		// A response from the server is a real error, not an offline
		// condition.
		if !w.classify.Transport(err) {
			w.notifier.Toast("Error al cargar la disponibilidad")
			return nil, err
		}
		log.Printf("availability fetch failed mid-flight, using fixed schedule: %v", err)
	}

	if cached, ok, err := w.store.CachedAvailability(ctx, room.ID, date); err == nil && ok {
		return cached, nil
	}
	return FallbackSchedule(), nil
}

// AvailabilityFor is the read-only availability query for one room and
// date. It never mutates selection state, so a concurrent booking pass
// is not disturbed.
func (w *Wizard) AvailabilityFor(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
	room, err := w.lookupRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, err := parse.ParseDate(date); err != nil {
		return nil, err
	}
	return w.availabilityFor(ctx, room, date)
}

// lookupRoom resolves an id against the active room list, loading the
// directory first when it has not been fetched yet.
func (w *Wizard) lookupRoom(ctx context.Context, roomID int64) (*model.Room, error) {
	w.mu.Lock()
	rooms := w.rooms
	w.mu.Unlock()
	if len(rooms) == 0 {
		if err := w.LoadRooms(ctx); err != nil {
			return nil, err
		}
		w.mu.Lock()
		rooms = w.rooms
		w.mu.Unlock()
	}
	for i := range rooms {
		if rooms[i].ID == roomID {
			room := rooms[i]
			return &room, nil
		}
	}
	return nil, ErrRoomNotAvailable
}

func (w *Wizard) adoptSlots(date string, slots []model.TimeSlot) {
	w.mu.Lock()
	w.date = date
	w.slots = slots
	w.slot = nil
	w.step = StepSelectSlot
	w.mu.Unlock()
}

// SelectSlot records the chosen slot and advances to confirmation.
// An unavailable slot leaves the wizard untouched.
func (w *Wizard) SelectSlot(start, end string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.slots {
		if w.slots[i].Start == start && w.slots[i].End == end {
			if !w.slots[i].Available {
				return ErrSlotUnavailable
			}
			slot := w.slots[i]
			w.slot = &slot
			w.step = StepConfirm
			return nil
		}
	}
	return ErrSlotUnavailable
}

// ConfirmBooking validates the wizard state and submits the request.
// On success (or the stored-offline equivalent) the wizard resets to
// step 1 and the caller navigates home. Failures preserve the wizard
// state so the user can adjust and retry.
func (w *Wizard) ConfirmBooking(ctx context.Context, reason string) (Outcome, error) {
	w.mu.Lock()
	room, date, slot := w.room, w.date, w.slot
	w.mu.Unlock()

	var start, end string
	if slot != nil {
		start, end = slot.Start, slot.End
	}
	outcome, err := w.submit(ctx, room, date, start, end, reason)
	if outcome == OutcomeCreated || outcome == OutcomeQueued {
		w.Reset()
	}
	return outcome, err
}

// Book runs one whole booking pass from the caller's own arguments:
// room lookup, availability check, slot guard and submission happen in
// a single call, so a concurrent availability query or a second pass
// can never change what this caller submits. Wizard step state is left
// alone.
func (w *Wizard) Book(ctx context.Context, roomID int64, date, start, end, reason string) (Outcome, error) {
	room, err := w.lookupRoom(ctx, roomID)
	if err != nil {
		return OutcomeNone, err
	}
	if _, err := parse.ParseDate(date); err != nil {
		return OutcomeNone, err
	}
	startClock, err := parse.ParseClock(start)
	if err != nil {
		return OutcomeNone, ErrSlotUnavailable
	}
	endClock, err := parse.ParseClock(end)
	if err != nil || !startClock.Before(endClock) {
		return OutcomeNone, ErrSlotUnavailable
	}

	slots, err := w.availabilityFor(ctx, room, date)
	if err != nil {
		return OutcomeNone, err
	}
	found := false
	for i := range slots {
		if slots[i].Start == start && slots[i].End == end {
			if !slots[i].Available {
				return OutcomeNone, ErrSlotUnavailable
			}
			found = true
			break
		}
	}
	if !found {
		return OutcomeNone, ErrSlotUnavailable
	}

	return w.submit(ctx, room, date, start, end, reason)
}

// submit builds the request and routes the gateway outcome to the user.
func (w *Wizard) submit(ctx context.Context, room *model.Room, date, start, end, reason string) (Outcome, error) {
	reason = strings.TrimSpace(reason)
	if room == nil || date == "" || start == "" || end == "" || reason == "" {
		w.notifier.Toast("Por favor, completa todos los campos")
		return OutcomeNone, ErrIncompleteForm
	}

	userID := w.session.UserID()
	if userID <= 0 {
		w.notifier.Alert("Error de autenticación",
			"No se pudo obtener el ID del usuario. Por favor, inicia sesión nuevamente.")
		w.session.Invalidate(ctx)
		return OutcomeNone, ErrNotAuthenticated
	}

	req := model.BookingRequest{
		Date:   date,
		Start:  start,
		End:    end,
		Reason: reason,
		UserID: userID,
		RoomID: room.ID,
	}

	err := w.api.CreateBooking(ctx, req, room)
	switch {
	case err == nil:
		w.notifier.Success("¡Reserva creada exitosamente!")
		if refreshErr := w.session.Refresh(ctx); refreshErr != nil {
			log.Printf("error refreshing user counters: %v", refreshErr)
		}
		return OutcomeCreated, nil

	case w.classify.StoredOffline(err):
		w.notifier.Success("Reserva guardada localmente. Se enviará cuando haya conexión.")
		return OutcomeQueued, nil

	case w.classify.Conflict(err):
		w.notifier.Alert("Conflicto de horario", err.Error())
		return OutcomeNone, err

	case w.classify.Unauthorized(err):
		w.notifier.Alert("Error de autenticación", err.Error())
		w.session.Invalidate(ctx)
		return OutcomeNone, err

	default:
		w.notifier.Alert("Error", err.Error())
		return OutcomeNone, err
	}
}

// Back steps the wizard backwards, clearing the state owned by the
// steps being exited. At step 1 it reports that the caller should
// leave the wizard entirely.
func (w *Wizard) Back() (left bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step <= StepSelectRoom {
		return true
	}
	w.step--
	switch w.step {
	case StepSelectRoom:
		w.resetLocked()
	case StepSelectDate:
		w.slots = nil
		w.slot = nil
	case StepSelectSlot:
		w.slot = nil
	}
	return false
}

// Reset returns the wizard to its initial state.
func (w *Wizard) Reset() {
	w.mu.Lock()
	w.resetLocked()
	w.mu.Unlock()
}

func (w *Wizard) resetLocked() {
	w.room = nil
	w.slots = nil
	w.slot = nil
	w.step = StepSelectRoom
	w.date = parse.Today()
}

// Reconcile runs once per transition to reachable: it tells the user
// how many queued bookings are waiting and hands each pending record to
// the sync pool exactly once. Records already syncing are skipped.
func (w *Wizard) Reconcile(ctx context.Context) {
	// Records synced on a previous transition have served their purpose.
	if err := w.store.PruneSynced(ctx); err != nil {
		log.Printf("error pruning synced bookings: %v", err)
	}

	count, err := w.store.CountPending(ctx)
	if err != nil {
		log.Printf("error counting pending bookings: %v", err)
		return
	}
	if count == 0 {
		return
	}

	log.Printf("%d queued booking(s) awaiting sync", count)
	w.notifier.Toast(fmt.Sprintf("%d reserva(s) pendiente(s) se sincronizarán automáticamente...", count))

	if w.dispatch == nil {
		return
	}
	list, err := w.store.ListPending(ctx)
	if err != nil {
		log.Printf("error listing pending bookings: %v", err)
		return
	}
	for _, p := range list {
		if p.SyncStatus == model.SyncPending {
			w.dispatch(p.ID)
		}
	}
}

// SyncPending resubmits one queued booking. The record moves to syncing
// before the network call and to synced or error after; a failure is
// recorded on the record rather than propagated as a crash.
func (w *Wizard) SyncPending(ctx context.Context, id string) error {
	list, err := w.store.ListPending(ctx)
	if err != nil {
		return err
	}
	var target *model.PendingBooking
	for i := range list {
		if list[i].ID == id {
			target = &list[i]
			break
		}
	}
	if target == nil {
		return ErrUnknownBooking
	}
	if target.SyncStatus == model.SyncSyncing {
		return ErrSyncInProgress
	}

	if err := w.store.SetStatus(ctx, id, model.SyncSyncing, ""); err != nil {
		return err
	}

	if err := w.api.Resubmit(ctx, target.BookingRequest); err != nil {
		if statusErr := w.store.SetStatus(ctx, id, model.SyncError, err.Error()); statusErr != nil {
			log.Printf("error recording sync failure for %s: %v", id, statusErr)
		}
		return err
	}

	if err := w.store.SetStatus(ctx, id, model.SyncSynced, ""); err != nil {
		return err
	}
	if err := w.store.TouchLastSync(ctx); err != nil {
		log.Printf("error updating last sync timestamp: %v", err)
	}
	return nil
}

// RetryPending is the user-triggered retry of one queued booking.
func (w *Wizard) RetryPending(ctx context.Context, id string) error {
	if !w.monitor.IsOnline() {
		w.notifier.Toast("No hay conexión a internet")
		return ErrOffline
	}

	err := w.SyncPending(ctx, id)
	switch {
	case err == nil:
		w.notifier.Toast("Reserva sincronizada exitosamente")
		if refreshErr := w.session.Refresh(ctx); refreshErr != nil {
			log.Printf("error refreshing user counters: %v", refreshErr)
		}
	case errors.Is(err, ErrSyncInProgress) || errors.Is(err, ErrUnknownBooking):
		// Nothing user-visible; status is reported by the queue view.
	default:
		w.notifier.Toast(err.Error())
	}
	return err
}
