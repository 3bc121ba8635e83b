package session

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fiber.Storage = (*MemoryStorage)(nil)

func TestStore(t *testing.T) {
	store := New(NewMemoryStorage(8, time.Hour), time.Hour)

	id, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 64)

	_, err = store.Read(id)
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Write(id, Data{UserID: 7, Username: "emma"}))

	data, err := store.Read(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), data.UserID)
	assert.Equal(t, "emma", data.Username)

	require.NoError(t, store.Delete(id))

	_, err = store.Read(id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_InvalidSession(t *testing.T) {
	storage := NewMemoryStorage(8, time.Hour)
	store := New(storage, time.Hour)

	require.NoError(t, storage.Set("anonymous", []byte(`{"username":"nobody"}`), 0))

	_, err := store.Read("anonymous")
	require.ErrorIs(t, err, ErrInvalidSession)

	require.NoError(t, storage.Set("broken", []byte(`{`), 0))

	_, err = store.Read("broken")
	require.Error(t, err)
}

func TestMemoryStorage_Expiry(t *testing.T) {
	storage := NewMemoryStorage(8, time.Hour)

	require.NoError(t, storage.Set("short", []byte("x"), time.Millisecond))
	require.NoError(t, storage.Set("long", []byte("y"), 0))

	time.Sleep(5 * time.Millisecond)

	v, err := storage.Get("short")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = storage.Get("long")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), v)

	require.NoError(t, storage.Reset())

	v, err = storage.Get("long")
	require.NoError(t, err)
	assert.Nil(t, v)
}
