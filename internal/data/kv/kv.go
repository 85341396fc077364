// Package kv is the durable key/value layer settings snapshots are written
// through to. Values are opaque bytes; callers own the encoding.
package kv

import (
	"context"
	"errors"
)

var ErrEmptyOwner = errors.New("kv: owner required")

type Storage interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, owner, key string) ([]byte, bool, error)
	Put(ctx context.Context, owner, key string, value []byte) error
	Delete(ctx context.Context, owner, key string) error
}

func checkOwnerKey(owner, key string) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if key == "" {
		return errors.New("kv: key required")
	}
	return nil
}
