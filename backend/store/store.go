// Package store is the key-value persistence boundary for the session and the
// submitted report list.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"
)

const (
	KeyUser    = "mangroveUser"
	KeyReports = "mangroveReports"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// Store is a string keyed, string valued persistence layer.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// GetJSON decodes the value under key into v. Absent and malformed values
// both report found == false; only backend failures are returned as errors.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("reading %q: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.WithField("key", key).Warnf("Ignoring malformed stored value: %v", err)
		return false, nil
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	if err := s.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}
