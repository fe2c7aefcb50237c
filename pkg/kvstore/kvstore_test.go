package kvstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/zksanta/engine/pkg/kvstore"
)

func TestMemStoreGetMissingReturnsErrNotFound(t *testing.T) {
	s := kvstore.NewMemStore()
	_, err := s.Get(context.Background(), []byte("missing"))
	if !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStorePutThenGet(t *testing.T) {
	s := kvstore.NewMemStore()
	ctx := context.Background()
	if err := s.Put(ctx, []byte("k"), []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, err := s.Get(ctx, []byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != "v1" {
		t.Fatalf("got %q, want v1", v)
	}

	if err := s.Put(ctx, []byte("k"), []byte("v2")); err != nil {
		t.Fatalf("overwrite put: %v", err)
	}
	v, err = s.Get(ctx, []byte("k"))
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if string(v) != "v2" {
		t.Fatalf("got %q, want v2", v)
	}
}

func TestMemStoreConcurrentAccess(t *testing.T) {
	s := kvstore.NewMemStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := []byte{byte(i)}
			_ = s.Put(ctx, key, key)
			_, _ = s.Get(ctx, key)
		}(i)
	}
	wg.Wait()
}

func TestGetReturnsACopyNotTheStoredSlice(t *testing.T) {
	s := kvstore.NewMemStore()
	ctx := context.Background()
	original := []byte("secret")
	if err := s.Put(ctx, []byte("k"), original); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, []byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got[0] = 'X'
	again, err := s.Get(ctx, []byte("k"))
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if string(again) != "secret" {
		t.Fatal("mutating a previously returned value must not affect the store")
	}
}
