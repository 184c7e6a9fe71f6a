// Package storage provides durable key/value stores for serialized
// application state.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks a stored value that could not be decoded.
var ErrCorrupt = errors.New("corrupt stored value")

// Store saves and loads opaque values by key.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	// Load returns ok=false when nothing is stored under key.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
}

// SaveJSON marshals v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Save(ctx, key, data)
}

// LoadJSON unmarshals the value stored under key into v.
// It reports false, leaving v untouched, when the key is absent.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}
