package inmemory

import (
	"context"
	"reflect"
	"testing"
)

func TestAppendPreservesOrder(t *testing.T) {
	store := NewInMemoryManifestStore()
	ctx := context.Background()

	if err := store.Append(ctx, "ws", []string{"a.png", "b.jpg"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, "ws", []string{"c.jpeg"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	names, initialized, err := store.Read(ctx, "ws")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !initialized {
		t.Fatal("manifest should be initialized after append")
	}
	want := []string{"a.png", "b.jpg", "c.jpeg"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v want %v", names, want)
	}
}

func TestAppendAssociative(t *testing.T) {
	ctx := context.Background()
	a := []string{"1.png", "2.png"}
	b := []string{"3.png"}

	split := NewInMemoryManifestStore()
	_ = split.Append(ctx, "ws", a)
	_ = split.Append(ctx, "ws", b)

	joined := NewInMemoryManifestStore()
	_ = joined.Append(ctx, "ws", append(append([]string{}, a...), b...))

	got1, _, _ := split.Read(ctx, "ws")
	got2, _, _ := joined.Read(ctx, "ws")
	if !reflect.DeepEqual(got1, got2) {
		t.Fatalf("split %v != joined %v", got1, got2)
	}
}

func TestClearYieldsUnset(t *testing.T) {
	store := NewInMemoryManifestStore()
	ctx := context.Background()

	_ = store.Append(ctx, "ws", []string{"a.png"})
	if err := store.Clear(ctx, "ws"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	names, initialized, err := store.Read(ctx, "ws")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if initialized {
		t.Fatalf("cleared manifest should be unset, got %v", names)
	}
}

func TestEmptyInitializedDistinctFromUnset(t *testing.T) {
	store := NewInMemoryManifestStore()
	ctx := context.Background()

	if _, initialized, _ := store.Read(ctx, "fresh"); initialized {
		t.Fatal("fresh workspace should be unset")
	}

	_ = store.Append(ctx, "ws", nil)
	names, initialized, err := store.Read(ctx, "ws")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !initialized {
		t.Fatal("appended workspace should be initialized even when empty")
	}
	if len(names) != 0 {
		t.Fatalf("expected empty manifest, got %v", names)
	}
}

func TestWorkspacesIsolated(t *testing.T) {
	store := NewInMemoryManifestStore()
	ctx := context.Background()

	_ = store.Append(ctx, "one", []string{"a.png"})
	_ = store.Append(ctx, "two", []string{"b.png"})
	_ = store.Clear(ctx, "one")

	names, initialized, _ := store.Read(ctx, "two")
	if !initialized || len(names) != 1 || names[0] != "b.png" {
		t.Fatalf("workspace two affected by clearing one: %v %v", names, initialized)
	}
}
