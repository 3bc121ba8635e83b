// Package session reads the sessions issued by the identity provider from the shared session storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrSessionNotFound is returned when the storage holds no session for an id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession is returned when a stored session names no user.
	ErrInvalidSession = errors.New("session has no user")
)

// Data represents the session data structure.
type Data struct {
	UserID   uint64    `json:"user_id"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store reads and writes sessions in a fiber storage backend.
type Store struct {
	storage fiber.Storage
	expiry  time.Duration
}

// New returns a store over storage. Written sessions expire after expiry.
func New(storage fiber.Storage, expiry time.Duration) *Store {
	if storage == nil {
		panic("storage is nil")
	}

	return &Store{storage: storage, expiry: expiry}
}

// Write writes the session data for the given session ID.
func (s *Store) Write(sessionID string, data Data) error {
	out, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.storage.Set(sessionID, out, s.expiry)
}

// Read reads the session data for the given session ID.
func (s *Store) Read(sessionID string) (Data, error) {
	var data Data

	byteData, err := s.storage.Get(sessionID)
	if err != nil {
		return data, err
	}

	if len(byteData) == 0 {
		return data, ErrSessionNotFound
	}

	if err := json.Unmarshal(byteData, &data); err != nil {
		return data, err
	}

	if data.UserID == 0 {
		return data, ErrInvalidSession
	}

	return data, nil
}

// Delete removes a session.
func (s *Store) Delete(sessionID string) error {
	return s.storage.Delete(sessionID)
}

// Close closes the storage backend.
func (s *Store) Close() error {
	return s.storage.Close()
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
