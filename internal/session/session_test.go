package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/store"
)

// mockAuthAPI is a mock implementation of the AuthAPI interface.
type mockAuthAPI struct {
	LoginFunc    func(ctx context.Context, email, password string) (*model.Session, error)
	UserInfoFunc func(ctx context.Context, userID int64) (*model.Session, error)
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*model.Session, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockAuthAPI) UserInfo(ctx context.Context, userID int64) (*model.Session, error) {
	return m.UserInfoFunc(ctx, userID)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}))
	return store.NewGormStore(db)
}

func TestLoginPersistsSession(t *testing.T) {
	s := newTestStore(t)
	api := &mockAuthAPI{
		LoginFunc: func(ctx context.Context, email, password string) (*model.Session, error) {
			return &model.Session{UserID: 42, Name: "Eduardo", TotalBookings: 3}, nil
		},
	}
	m := NewManager(s, api)

	sess, err := m.Login(context.Background(), "edu@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), sess.UserID)
	assert.True(t, m.IsLoggedIn())
	assert.Equal(t, int64(42), m.UserID())

	// A fresh manager over the same store restores the session.
	restored := NewManager(s, api)
	require.NoError(t, restored.Restore(context.Background()))
	assert.Equal(t, int64(42), restored.UserID())
	assert.Equal(t, "Eduardo", restored.Current().Name)
}

func TestRefreshUpdatesCountersOnly(t *testing.T) {
	s := newTestStore(t)
	api := &mockAuthAPI{
		LoginFunc: func(ctx context.Context, email, password string) (*model.Session, error) {
			return &model.Session{UserID: 42, Name: "Eduardo", TotalBookings: 3, ActiveToday: 0}, nil
		},
		UserInfoFunc: func(ctx context.Context, userID int64) (*model.Session, error) {
			assert.Equal(t, int64(42), userID)
			return &model.Session{
				UserID:        42,
				Name:          "should not overwrite",
				TotalBookings: 4,
				ActiveToday:   1,
				Upcoming:      []model.BookingHistory{{ID: 7, Status: model.StatusConfirmed}},
			}, nil
		},
	}
	m := NewManager(s, api)
	_, err := m.Login(context.Background(), "edu@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, m.Refresh(context.Background()))

	current := m.Current()
	assert.Equal(t, "Eduardo", current.Name)
	assert.Equal(t, 4, current.TotalBookings)
	assert.Equal(t, 1, current.ActiveToday)
	require.Len(t, current.Upcoming, 1)
	assert.Equal(t, int64(7), current.Upcoming[0].ID)
}

func TestRefreshWithoutSessionIsNoOp(t *testing.T) {
	m := NewManager(newTestStore(t), &mockAuthAPI{
		UserInfoFunc: func(ctx context.Context, userID int64) (*model.Session, error) {
			t.Fatal("UserInfo must not be called without a session")
			return nil, nil
		},
	})
	assert.NoError(t, m.Refresh(context.Background()))
}

func TestInvalidateClearsPersistedSession(t *testing.T) {
	s := newTestStore(t)
	api := &mockAuthAPI{
		LoginFunc: func(ctx context.Context, email, password string) (*model.Session, error) {
			return &model.Session{UserID: 42, Name: "Eduardo"}, nil
		},
	}
	m := NewManager(s, api)
	_, err := m.Login(context.Background(), "edu@example.com", "secret")
	require.NoError(t, err)

	m.Invalidate(context.Background())

	assert.False(t, m.IsLoggedIn())
	assert.Zero(t, m.UserID())

	_, found, err := s.LoadSession(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}
