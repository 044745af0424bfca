package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_NamespacesAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := New()

	if err := c.Set(ctx, "get_form_meta", "tok", []byte("meta")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "get_custom_css", "tok"); ok {
		t.Fatalf("expected miss in other namespace")
	}
	got, ok, err := c.Get(ctx, "get_form_meta", "tok")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(got) != "meta" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	c := New()

	value := []byte("abc")
	_ = c.Set(ctx, "ns", "k", value)
	value[0] = 'x'

	got, _, _ := c.Get(ctx, "ns", "k")
	got[1] = 'y'

	again, _, _ := c.Get(ctx, "ns", "k")
	if string(again) != "abc" {
		t.Fatalf("cached value was mutated: %q", again)
	}
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	c := New()
	_ = c.Set(ctx, "ns", "k", []byte("v"))
	_ = c.Delete(ctx, "ns", "k")
	_ = c.Delete(ctx, "missing", "k")

	if _, ok, _ := c.Get(ctx, "ns", "k"); ok {
		t.Fatalf("expected entry removed")
	}
}

func TestMemory_NamespaceTTL(t *testing.T) {
	ctx := context.Background()
	c := New(
		WithTTL(time.Hour),
		WithNamespaceTTL("short", 20*time.Millisecond),
	)
	_ = c.Set(ctx, "short", "k", []byte("v"))
	_ = c.Set(ctx, "long", "k", []byte("v"))

	time.Sleep(80 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "short", "k"); ok {
		t.Fatalf("expected short-lived entry to expire")
	}
	if _, ok, _ := c.Get(ctx, "long", "k"); !ok {
		t.Fatalf("expected long-lived entry to survive")
	}
}

func TestMemory_SizeBound(t *testing.T) {
	ctx := context.Background()
	c := New(WithSize(2))
	_ = c.Set(ctx, "ns", "a", []byte("1"))
	_ = c.Set(ctx, "ns", "b", []byte("2"))
	_ = c.Set(ctx, "ns", "c", []byte("3"))

	if got := c.Len("ns"); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
	if _, ok, _ := c.Get(ctx, "ns", "a"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
}
