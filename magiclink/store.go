package magiclink

import (
	"context"
	"time"
)

// KeyPrefix namespaces magic link entries in shared key-value stores
const KeyPrefix = "magic_link:"

// Entry is the value stored against a magic link token
type Entry struct {
	UserID string `json:"userId"`
}

// Store holds single-use magic link tokens. Expiry is enforced by the store.
type Store interface {
	// Put stores the entry for ttl, failing with errors.ErrDuplicate if the token is already live
	Put(ctx context.Context, token string, entry Entry, ttl time.Duration) error
	// Take returns and removes the entry in one step. Expired, consumed and unknown tokens fail with errors.ErrNotFound.
	Take(ctx context.Context, token string) (*Entry, error)
}

func key(token string) string {
	return KeyPrefix + token
}
