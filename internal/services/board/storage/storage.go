package storage

import (
	"context"
	"time"
)

// Cache keys owned by the client stores.
const (
	KeyJoinedMissions = "xue_joined_missions"
	KeyFriendGraph    = "xue_friends_v2"
)

// Entry is one cached blob and its write time.
type Entry struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

// Store is the key-value contract for the local cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
