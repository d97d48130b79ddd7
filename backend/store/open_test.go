package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mangrovewatch/backend/config"

	"github.com/alicebob/miniredis/v2"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, &config.Config{StoreBackend: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("memory backend: got %T", s)
	}
	closeFn()

	s, _, err = Open(ctx, &config.Config{StoreBackend: "file", StorePath: filepath.Join(t.TempDir(), "s.json")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*File); !ok {
		t.Errorf("file backend: got %T", s)
	}

	mr := miniredis.RunT(t)
	s, closeFn, err = Open(ctx, &config.Config{StoreBackend: "redis", RedisURL: "redis://" + mr.Addr() + "/0", RedisPrefix: "t:"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Redis); !ok {
		t.Errorf("redis backend: got %T", s)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}

	if _, _, err := Open(ctx, &config.Config{StoreBackend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
