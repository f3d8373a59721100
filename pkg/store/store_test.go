package store

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/dagopt/pkg/dag"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	payload := []byte(`{"id":"x"}`)
	if err := s.Set(ctx, "key-1", payload, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := s.Get(ctx, "key-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() reported a miss for a stored key")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Get() = %s, want %s", got, payload)
	}
}

func TestFileStore_MissingKey(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	_, ok, err := s.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() reported a hit for a missing key")
	}
}

func TestFileStore_Expiration(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok, _ := s.Get(ctx, "short"); ok {
		t.Error("Get() returned an expired entry")
	}
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() found a deleted key")
	}

	// Deleting a missing key is not an error.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestFileStore_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	for _, key := range []string{"b", "a"} {
		if err := s.Set(ctx, key, []byte("v"), 0); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}
	if err := s.Set(ctx, "expired", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	keys, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	slices.Sort(keys)
	if want := []string{"a", "b"}; !slices.Equal(keys, want) {
		t.Errorf("List() = %v, want %v", keys, want)
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()

	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("null store returned a hit")
	}
	keys, err := s.List(ctx)
	if err != nil || keys != nil {
		t.Errorf("List() = %v, %v, want nil, nil", keys, err)
	}
}

func TestGraphKey_OrderInvariant(t *testing.T) {
	edges := []dag.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
	}
	g1, err := dag.Build(edges)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	g2, err := dag.Build([]dag.Edge{edges[1], edges[0]})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if GraphKey(g1) != GraphKey(g2) {
		t.Error("GraphKey differs across edge insertion orders")
	}

	g3, err := dag.Build(edges, dag.WithNodes("extra"))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if GraphKey(g1) == GraphKey(g3) {
		t.Error("GraphKey ignored an isolated node")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("non-retryable stops immediately", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return errors.New("permanent")
		})
		if err == nil || calls != 1 {
			t.Errorf("got err %v after %d calls, want 1 call", err, calls)
		}
	})

	t.Run("retryable succeeds on second attempt", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls == 1 {
				return Retryable(errors.New("transient"))
			}
			return nil
		})
		if err != nil || calls != 2 {
			t.Errorf("got err %v after %d calls, want nil after 2", err, calls)
		}
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(ctx, func() error {
			return Retryable(errors.New("transient"))
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error reported retryable")
	}
	if !IsRetryable(Retryable(errors.New("wrapped"))) {
		t.Error("wrapped error not reported retryable")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
}
