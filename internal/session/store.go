package session

import "errors"

// Keys under which the session is persisted.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound is returned by a Store when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// Store is a flat key/value persistence for session fields.
// Implementations must treat Delete of a missing key as a no-op.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
