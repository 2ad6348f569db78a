package resolve

import (
	"context"
	"errors"
	"testing"
)

func TestCacheStates(t *testing.T) {
	cache := NewCache(&stubEncoder{})

	if _, state := cache.Get("/d/a.puml"); state != StateUnknown {
		t.Errorf("state before Register = %v, want StateUnknown", state)
	}

	cache.Register("/d/a.puml", "text")
	entry, state := cache.Get("/d/a.puml")
	if state != StatePending {
		t.Errorf("state after Register = %v, want StatePending", state)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil while pending", entry)
	}

	resolved, err := cache.Resolve(context.Background(), "/d/a.puml", "final text")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	entry, state = cache.Get("/d/a.puml")
	if state != StateResolved {
		t.Errorf("state after Resolve = %v, want StateResolved", state)
	}
	if entry != resolved {
		t.Error("Get() entry differs from Resolve() result")
	}
	if entry.Text != "final text" {
		t.Errorf("entry.Text = %q", entry.Text)
	}
	if entry.URL == "" || entry.Encoded == "" {
		t.Errorf("entry not finalized: %+v", entry)
	}
}

func TestCacheResolveUnregistered(t *testing.T) {
	cache := NewCache(&stubEncoder{})
	_, err := cache.Resolve(context.Background(), "/d/missing.puml", "text")
	if !errors.Is(err, ErrNotManaged) {
		t.Fatalf("Resolve() error = %v, want ErrNotManaged", err)
	}
}

func TestCacheResolveIdempotent(t *testing.T) {
	enc := &stubEncoder{}
	cache := NewCache(enc)
	cache.Register("/d/a.puml", "raw")

	first, err := cache.Resolve(context.Background(), "/d/a.puml", "text one")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := cache.Resolve(context.Background(), "/d/a.puml", "text two")
	if err != nil {
		t.Fatalf("Resolve() second error = %v", err)
	}
	if second != first {
		t.Error("second Resolve() produced a new entry, want recorded result")
	}
	if enc.callCount() != 1 {
		t.Errorf("encoder calls = %d, want 1", enc.callCount())
	}
}

func TestCacheRegisterIdempotent(t *testing.T) {
	cache := NewCache(&stubEncoder{})
	cache.Register("/d/a.puml", "old text")
	cache.Register("/d/a.puml", "new text")

	if n := cache.Len(); n != 1 {
		t.Fatalf("Len() = %d, want 1", n)
	}

	entry, err := cache.Resolve(context.Background(), "/d/a.puml", "new text")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if entry.Text != "new text" {
		t.Errorf("entry.Text = %q", entry.Text)
	}
}

func TestCachePathsSorted(t *testing.T) {
	cache := NewCache(&stubEncoder{})
	for _, p := range []string{"/d/z.puml", "/d/a.puml", "/d/m.puml"} {
		cache.Register(p, "")
	}

	paths := cache.Paths()
	want := []string{"/d/a.puml", "/d/m.puml", "/d/z.puml"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Paths()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestCacheResolvedURLs(t *testing.T) {
	cache := NewCache(&stubEncoder{})
	cache.Register("/d/a.puml", "")
	cache.Register("/d/b.puml", "")

	if _, err := cache.Resolve(context.Background(), "/d/a.puml", "A"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	urls := cache.ResolvedURLs()
	if len(urls) != 1 {
		t.Fatalf("ResolvedURLs() = %v, want 1 resolved entry", urls)
	}
	if urls["/d/a.puml"] == "" {
		t.Error("ResolvedURLs() missing resolved path")
	}
}
