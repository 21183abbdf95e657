package workflow

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"aulas-booking-client/internal/connectivity"
	"aulas-booking-client/internal/gateway"
	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/store"
)

// mockBookingAPI is a mock implementation of the BookingAPI interface.
type mockBookingAPI struct {
	RoomsFunc         func(ctx context.Context) ([]model.Room, error)
	AvailabilityFunc  func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error)
	CreateBookingFunc func(ctx context.Context, req model.BookingRequest, room *model.Room) error
	ResubmitFunc      func(ctx context.Context, req model.BookingRequest) error
}

func (m *mockBookingAPI) Rooms(ctx context.Context) ([]model.Room, error) {
	return m.RoomsFunc(ctx)
}

func (m *mockBookingAPI) Availability(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
	return m.AvailabilityFunc(ctx, roomID, date)
}

func (m *mockBookingAPI) CreateBooking(ctx context.Context, req model.BookingRequest, room *model.Room) error {
	return m.CreateBookingFunc(ctx, req, room)
}

func (m *mockBookingAPI) Resubmit(ctx context.Context, req model.BookingRequest) error {
	return m.ResubmitFunc(ctx, req)
}

// mockSession is a mock implementation of the SessionAPI interface.
type mockSession struct {
	userID      int64
	refreshed   int
	invalidated int
}

func (m *mockSession) UserID() int64 { return m.userID }

func (m *mockSession) Refresh(ctx context.Context) error {
	m.refreshed++
	return nil
}

func (m *mockSession) Invalidate(ctx context.Context) { m.invalidated++ }

// recordingNotifier captures every user-visible message.
type recordingNotifier struct {
	mu        sync.Mutex
	toasts    []string
	alerts    []string
	successes []string
}

func (n *recordingNotifier) Toast(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, message)
}

func (n *recordingNotifier) Alert(header, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, header+": "+message)
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Toasts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.toasts...)
}

func gatewayClassify() ErrorClass {
	return ErrorClass{
		Conflict:      gateway.IsConflict,
		StoredOffline: gateway.IsStoredOffline,
		Unauthorized:  gateway.IsUnauthorized,
		Transport:     gateway.IsTransport,
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}))
	return store.NewGormStore(db)
}

type fixture struct {
	wizard   *Wizard
	store    store.Store
	monitor  *connectivity.Monitor
	api      *mockBookingAPI
	session  *mockSession
	notifier *recordingNotifier
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	s := newTestStore(t)
	monitor := connectivity.NewMonitor(nil, online)
	api := &mockBookingAPI{
		RoomsFunc: func(ctx context.Context) ([]model.Room, error) {
			return []model.Room{
				{ID: 1, Name: "A-101", Capacity: 30, Active: true},
				{ID: 2, Name: "B-202", Capacity: 25, Active: false},
			}, nil
		},
	}
	sess := &mockSession{userID: 42}
	notifier := &recordingNotifier{}
	w := New(s, monitor, api, sess, notifier, gatewayClassify())
	return &fixture{wizard: w, store: s, monitor: monitor, api: api, session: sess, notifier: notifier}
}

// advanceToConfirm drives the wizard to step 4 with a selected slot.
func (f *fixture) advanceToConfirm(t *testing.T, ctx context.Context) {
	t.Helper()
	require.NoError(t, f.wizard.LoadRooms(ctx))
	require.NoError(t, f.wizard.SelectRoom(1))
	_, err := f.wizard.SelectDate(ctx, "2025-12-04")
	require.NoError(t, err)
	require.NoError(t, f.wizard.SelectSlot("08:30:00", "09:30:00"))
	require.Equal(t, StepConfirm, f.wizard.Step())
}

func TestLoadRoomsFiltersInactive(t *testing.T) {
	// Scenario A: one active room, one inactive; only the active one appears.
	f := newFixture(t, true)
	require.NoError(t, f.wizard.LoadRooms(context.Background()))

	rooms := f.wizard.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(1), rooms[0].ID)
	assert.Equal(t, "A-101", rooms[0].Name)
}

func TestLoadRoomsFallsBackToCache(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.store.CacheRooms(ctx, []model.Room{
		{ID: 3, Name: "C-303", Active: true},
		{ID: 4, Name: "D-404", Active: false},
	}))
	f.api.RoomsFunc = func(ctx context.Context) ([]model.Room, error) {
		return nil, &gateway.APIError{Message: "dial tcp: connection refused"}
	}

	require.NoError(t, f.wizard.LoadRooms(ctx))

	rooms := f.wizard.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(3), rooms[0].ID)
}

func TestSelectRoomRequiresActiveListing(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.wizard.LoadRooms(context.Background()))

	assert.ErrorIs(t, f.wizard.SelectRoom(2), ErrRoomNotAvailable) // inactive
	assert.ErrorIs(t, f.wizard.SelectRoom(99), ErrRoomNotAvailable)
	assert.Equal(t, StepSelectRoom, f.wizard.Step())

	require.NoError(t, f.wizard.SelectRoom(1))
	assert.Equal(t, StepSelectDate, f.wizard.Step())
}

func TestSelectDateOfflineUsesFallbackSchedule(t *testing.T) {
	// Scenario B: offline date selection yields the eight fixed slots.
	f := newFixture(t, false)
	ctx := context.Background()
	require.NoError(t, f.wizard.LoadRooms(ctx))
	require.NoError(t, f.wizard.SelectRoom(1))

	f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
		t.Fatal("availability must not be fetched while offline")
		return nil, nil
	}

	slots, err := f.wizard.SelectDate(ctx, "2025-12-04")
	require.NoError(t, err)
	require.Len(t, slots, 8)
	assert.Equal(t, "07:30:00", slots[0].Start)
	assert.Equal(t, "15:00:00", slots[7].End)
	for _, slot := range slots {
		assert.True(t, slot.Available)
	}
	assert.Equal(t, StepSelectSlot, f.wizard.Step())
}

func TestFallbackScheduleIsCloned(t *testing.T) {
	first := FallbackSchedule()
	first[0].Available = false
	first[0].Start = "corrupted"

	second := FallbackSchedule()
	assert.Equal(t, "07:30:00", second[0].Start)
	assert.True(t, second[0].Available)
}

func TestSelectDateOnline(t *testing.T) {
	serverSlots := []model.TimeSlot{
		{Start: "07:30:00", End: "08:30:00", Available: false},
		{Start: "08:30:00", End: "09:30:00", Available: true},
	}

	t.Run("adopts server slots and advances", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		require.NoError(t, f.wizard.LoadRooms(ctx))
		require.NoError(t, f.wizard.SelectRoom(1))
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			assert.Equal(t, int64(1), roomID)
			assert.Equal(t, "2025-12-04", date)
			return serverSlots, nil
		}

		slots, err := f.wizard.SelectDate(ctx, "2025-12-04")
		require.NoError(t, err)
		assert.Equal(t, serverSlots, slots)
		assert.Equal(t, StepSelectSlot, f.wizard.Step())

		// Server truth was cached for later offline reads.
		cached, ok, err := f.store.CachedAvailability(ctx, 1, "2025-12-04")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, serverSlots, cached)
	})

	t.Run("server-side failure stays on date selection", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		require.NoError(t, f.wizard.LoadRooms(ctx))
		require.NoError(t, f.wizard.SelectRoom(1))
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			return nil, &gateway.APIError{StatusCode: http.StatusInternalServerError, Message: "Error del servidor"}
		}

		_, err := f.wizard.SelectDate(ctx, "2025-12-04")
		require.Error(t, err)
		assert.Equal(t, StepSelectDate, f.wizard.Step())
		assert.Contains(t, f.notifier.Toasts(), "Error al cargar la disponibilidad")
	})

	t.Run("mid-flight transport failure falls back to fixed schedule", func(t *testing.T) {
		f := newFixture(t, true) // signal still says online
		ctx := context.Background()
		require.NoError(t, f.wizard.LoadRooms(ctx))
		require.NoError(t, f.wizard.SelectRoom(1))
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			return nil, &gateway.APIError{Message: "dial tcp: connection refused"}
		}

		slots, err := f.wizard.SelectDate(ctx, "2025-12-04")
		require.NoError(t, err)
		assert.Len(t, slots, 8)
		assert.Equal(t, StepSelectSlot, f.wizard.Step())
	})

	t.Run("offline prefers fresh cached server truth", func(t *testing.T) {
		f := newFixture(t, false)
		ctx := context.Background()
		require.NoError(t, f.wizard.LoadRooms(ctx))
		require.NoError(t, f.wizard.SelectRoom(1))
		require.NoError(t, f.store.CacheAvailability(ctx, 1, "2025-12-04", serverSlots))

		slots, err := f.wizard.SelectDate(ctx, "2025-12-04")
		require.NoError(t, err)
		assert.Equal(t, serverSlots, slots)
	})
}

func TestSelectSlotIgnoresUnavailable(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.wizard.LoadRooms(ctx))
	require.NoError(t, f.wizard.SelectRoom(1))
	f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
		return []model.TimeSlot{
			{Start: "07:30:00", End: "08:30:00", Available: false},
			{Start: "08:30:00", End: "09:30:00", Available: true},
		}, nil
	}
	_, err := f.wizard.SelectDate(ctx, "2025-12-04")
	require.NoError(t, err)

	assert.ErrorIs(t, f.wizard.SelectSlot("07:30:00", "08:30:00"), ErrSlotUnavailable)
	assert.Equal(t, StepSelectSlot, f.wizard.Step())

	require.NoError(t, f.wizard.SelectSlot("08:30:00", "09:30:00"))
	assert.Equal(t, StepConfirm, f.wizard.Step())
}

func TestConfirmBooking(t *testing.T) {
	t.Run("success resets and refreshes counters", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			return FallbackSchedule(), nil
		}
		f.advanceToConfirm(t, ctx)

		var submitted model.BookingRequest
		f.api.CreateBookingFunc = func(ctx context.Context, req model.BookingRequest, room *model.Room) error {
			submitted = req
			return nil
		}

		outcome, err := f.wizard.ConfirmBooking(ctx, "  Clase de repaso  ")
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome)
		assert.Equal(t, model.BookingRequest{
			Date: "2025-12-04", Start: "08:30:00", End: "09:30:00",
			Reason: "Clase de repaso", UserID: 42, RoomID: 1,
		}, submitted)
		assert.Equal(t, 1, f.session.refreshed)
		assert.Equal(t, StepSelectRoom, f.wizard.Step())
	})

	t.Run("blank reason blocks before any network attempt", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			return FallbackSchedule(), nil
		}
		f.advanceToConfirm(t, ctx)
		f.api.CreateBookingFunc = func(ctx context.Context, req model.BookingRequest, room *model.Room) error {
			t.Fatal("create must not be called for an incomplete form")
			return nil
		}

		_, err := f.wizard.ConfirmBooking(ctx, "   ")
		assert.ErrorIs(t, err, ErrIncompleteForm)
		assert.Contains(t, f.notifier.Toasts(), "Por favor, completa todos los campos")
		assert.Equal(t, StepConfirm, f.wizard.Step())
	})

	t.Run("missing user id invalidates the session", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			return FallbackSchedule(), nil
		}
		f.advanceToConfirm(t, ctx)
		f.session.userID = 0

		_, err := f.wizard.ConfirmBooking(ctx, "Clase de repaso")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.Equal(t, 1, f.session.invalidated)
	})

	t.Run("conflict keeps the wizard on confirmation", func(t *testing.T) {
		// Scenario C: 409 shows the conflict dialog, wizard stays on
		// step 4, nothing is queued locally.
		f := newFixture(t, true)
		ctx := context.Background()
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			return FallbackSchedule(), nil
		}
		f.advanceToConfirm(t, ctx)
		f.api.CreateBookingFunc = func(ctx context.Context, req model.BookingRequest, room *model.Room) error {
			return &gateway.APIError{StatusCode: http.StatusConflict, Message: "El aula ya está reservada"}
		}

		outcome, err := f.wizard.ConfirmBooking(ctx, "Clase de repaso")
		require.Error(t, err)
		assert.Equal(t, OutcomeNone, outcome)
		assert.Equal(t, StepConfirm, f.wizard.Step())

		f.notifier.mu.Lock()
		alerts := append([]string(nil), f.notifier.alerts...)
		f.notifier.mu.Unlock()
		require.Len(t, alerts, 1)
		assert.Contains(t, alerts[0], "Conflicto de horario")

		list, listErr := f.store.ListPending(ctx)
		require.NoError(t, listErr)
		assert.Empty(t, list)
	})

	t.Run("stored offline counts as success", func(t *testing.T) {
		f := newFixture(t, false)
		ctx := context.Background()
		f.advanceToConfirm(t, ctx)
		f.api.CreateBookingFunc = func(ctx context.Context, req model.BookingRequest, room *model.Room) error {
			_, appendErr := f.store.AppendPending(ctx, req, room)
			require.NoError(t, appendErr)
			return &gateway.APIError{StoredOffline: true, Message: "guardada localmente"}
		}

		outcome, err := f.wizard.ConfirmBooking(ctx, "Clase de repaso")
		require.NoError(t, err)
		assert.Equal(t, OutcomeQueued, outcome)
		assert.Equal(t, StepSelectRoom, f.wizard.Step())

		list, listErr := f.store.ListPending(ctx)
		require.NoError(t, listErr)
		require.Len(t, list, 1)
		assert.Equal(t, model.SyncPending, list[0].SyncStatus)
	})
}

func TestBackClearsExitedState(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.advanceToConfirm(t, ctx)

	assert.False(t, f.wizard.Back()) // 4 -> 3
	assert.Equal(t, StepSelectSlot, f.wizard.Step())
	assert.NotEmpty(t, f.wizard.Slots())

	assert.False(t, f.wizard.Back()) // 3 -> 2, slots cleared
	assert.Equal(t, StepSelectDate, f.wizard.Step())
	assert.Empty(t, f.wizard.Slots())

	assert.False(t, f.wizard.Back()) // 2 -> 1, full reset
	assert.Equal(t, StepSelectRoom, f.wizard.Step())

	assert.True(t, f.wizard.Back()) // at 1, leave the wizard
}

func TestReconcileDispatchesEachPendingOnce(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	first, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-04", RoomID: 1, UserID: 42}, nil)
	require.NoError(t, err)
	second, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-05", RoomID: 1, UserID: 42}, nil)
	require.NoError(t, err)
	syncing, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-06", RoomID: 1, UserID: 42}, nil)
	require.NoError(t, err)
	require.NoError(t, f.store.SetStatus(ctx, syncing.ID, model.SyncSyncing, ""))

	var dispatched []string
	f.wizard.SetDispatcher(func(id string) { dispatched = append(dispatched, id) })

	f.wizard.Reconcile(ctx)

	assert.ElementsMatch(t, []string{first.ID, second.ID}, dispatched)
	assert.Contains(t, f.notifier.Toasts(), "2 reserva(s) pendiente(s) se sincronizarán automáticamente...")
}

func TestReconnectTriggersReconciliation(t *testing.T) {
	// Scenario E: false -> true transition with one pending record.
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-04", RoomID: 1, UserID: 42}, nil)
	require.NoError(t, err)

	dispatched := make(chan string, 4)
	f.wizard.SetDispatcher(func(id string) { dispatched <- id })

	f.wizard.Activate(ctx)
	defer f.wizard.Close()

	f.monitor.Set(true)

	select {
	case <-dispatched:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reconnect dispatch")
	}
	// Exactly one dispatch for the single pending record.
	select {
	case id := <-dispatched:
		t.Fatalf("unexpected second dispatch: %s", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSyncPending(t *testing.T) {
	t.Run("success transitions to synced and touches last sync", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		pending, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-04", RoomID: 1, UserID: 42}, nil)
		require.NoError(t, err)
		f.api.ResubmitFunc = func(ctx context.Context, req model.BookingRequest) error { return nil }

		require.NoError(t, f.wizard.SyncPending(ctx, pending.ID))

		list, err := f.store.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, model.SyncSynced, list[0].SyncStatus)

		_, found, err := f.store.LastSync(ctx)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("failure is recorded on the record", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		pending, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-04", RoomID: 1, UserID: 42}, nil)
		require.NoError(t, err)
		f.api.ResubmitFunc = func(ctx context.Context, req model.BookingRequest) error {
			return &gateway.APIError{StatusCode: http.StatusConflict, Message: "El aula ya está reservada"}
		}

		err = f.wizard.SyncPending(ctx, pending.ID)
		require.Error(t, err)

		list, listErr := f.store.ListPending(ctx)
		require.NoError(t, listErr)
		require.Len(t, list, 1)
		assert.Equal(t, model.SyncError, list[0].SyncStatus)
		assert.Contains(t, list[0].ErrorMessage, "El aula ya está reservada")
	})

	t.Run("refuses a record that is already syncing", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		pending, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-04", RoomID: 1, UserID: 42}, nil)
		require.NoError(t, err)
		require.NoError(t, f.store.SetStatus(ctx, pending.ID, model.SyncSyncing, ""))
		f.api.ResubmitFunc = func(ctx context.Context, req model.BookingRequest) error {
			t.Fatal("resubmit must not run for a record already syncing")
			return nil
		}

		assert.ErrorIs(t, f.wizard.SyncPending(ctx, pending.ID), ErrSyncInProgress)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t, true)
		assert.ErrorIs(t, f.wizard.SyncPending(context.Background(), "offline_0_missing"), ErrUnknownBooking)
	})
}

func TestRetryPendingRequiresConnection(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	pending, err := f.store.AppendPending(ctx, model.BookingRequest{Date: "2025-12-04", RoomID: 1, UserID: 42}, nil)
	require.NoError(t, err)
	f.api.ResubmitFunc = func(ctx context.Context, req model.BookingRequest) error {
		t.Fatal("resubmit must not run offline")
		return nil
	}

	err = f.wizard.RetryPending(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrOffline)
	assert.Contains(t, f.notifier.Toasts(), "No hay conexión a internet")

	list, listErr := f.store.ListPending(ctx)
	require.NoError(t, listErr)
	assert.Equal(t, model.SyncPending, list[0].SyncStatus)
}

func TestSelectDateRequiresRoom(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.wizard.SelectDate(context.Background(), "2025-12-04")
	assert.ErrorIs(t, err, ErrNoRoomSelected)

	require.NoError(t, f.wizard.LoadRooms(context.Background()))
	require.NoError(t, f.wizard.SelectRoom(1))
	_, err = f.wizard.SelectDate(context.Background(), "04/12/2025")
	assert.Error(t, err)
	assert.Equal(t, StepSelectDate, f.wizard.Step())
}

func TestBookSubmitsCallerSelections(t *testing.T) {
	// Another client re-points the shared wizard at a different room
	// and day while a booking pass is in flight; the pass must still
	// submit exactly what its caller asked for.
	f := newFixture(t, true)
	ctx := context.Background()

	f.api.RoomsFunc = func(ctx context.Context) ([]model.Room, error) {
		return []model.Room{
			{ID: 1, Name: "A-101", Capacity: 30, Active: true},
			{ID: 2, Name: "B-202", Capacity: 25, Active: true},
		}, nil
	}
	f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
		if roomID == 1 {
			require.NoError(t, f.wizard.SelectRoom(2))
			_, err := f.wizard.SelectDate(ctx, "2025-12-05")
			require.NoError(t, err)
		}
		return FallbackSchedule(), nil
	}
	var submitted model.BookingRequest
	f.api.CreateBookingFunc = func(ctx context.Context, req model.BookingRequest, room *model.Room) error {
		submitted = req
		assert.Equal(t, int64(1), room.ID)
		return nil
	}

	require.NoError(t, f.wizard.LoadRooms(ctx))
	outcome, err := f.wizard.Book(ctx, 1, "2025-12-04", "07:30:00", "08:30:00", "Clase de repaso")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, int64(1), submitted.RoomID)
	assert.Equal(t, "2025-12-04", submitted.Date)
	assert.Equal(t, "07:30:00", submitted.Start)
	assert.Equal(t, "08:30:00", submitted.End)
}

func TestBookValidatesSlotBounds(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
		return FallbackSchedule(), nil
	}
	f.api.CreateBookingFunc = func(ctx context.Context, req model.BookingRequest, room *model.Room) error {
		t.Fatal("nothing should be submitted")
		return nil
	}

	t.Run("end must come after start", func(t *testing.T) {
		_, err := f.wizard.Book(ctx, 1, "2025-12-04", "08:30:00", "07:30:00", "Clase")
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("malformed times are rejected", func(t *testing.T) {
		_, err := f.wizard.Book(ctx, 1, "2025-12-04", "8h30", "09:30:00", "Clase")
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("slot must exist in the schedule", func(t *testing.T) {
		_, err := f.wizard.Book(ctx, 1, "2025-12-04", "07:45:00", "08:45:00", "Clase")
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("taken slot is refused", func(t *testing.T) {
		f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
			return []model.TimeSlot{{Start: "07:30:00", End: "08:30:00", Available: false}}, nil
		}
		_, err := f.wizard.Book(ctx, 1, "2025-12-04", "07:30:00", "08:30:00", "Clase")
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})
}

func TestAvailabilityForLeavesSelectionAlone(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.api.AvailabilityFunc = func(ctx context.Context, roomID int64, date string) ([]model.TimeSlot, error) {
		return FallbackSchedule(), nil
	}
	f.advanceToConfirm(t, ctx)

	slots, err := f.wizard.AvailabilityFor(ctx, 1, "2025-12-25")
	require.NoError(t, err)
	require.Len(t, slots, 8)
	assert.Equal(t, StepConfirm, f.wizard.Step())

	// The pass in flight still confirms the day it selected.
	var submitted model.BookingRequest
	f.api.CreateBookingFunc = func(ctx context.Context, req model.BookingRequest, room *model.Room) error {
		submitted = req
		return nil
	}
	outcome, err := f.wizard.ConfirmBooking(ctx, "Clase de repaso")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, "2025-12-04", submitted.Date)
}
