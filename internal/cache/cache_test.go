package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("empty cache must miss")
	}

	c.Set(ctx, "k", []byte("v"))

	got, ok := c.Get(ctx, "k")

	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10 * time.Millisecond)

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expired entry must miss")
	}
}

func TestMemoryDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	c.Delete(ctx, "a")

	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("deleted entry must miss")
	}

	c.Clear(ctx)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatal("cleared cache must miss")
	}
}
