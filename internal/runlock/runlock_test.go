package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"performersync/internal/runlock"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "performersync.lock")

	first, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if first.Path() != path {
		t.Fatalf("unexpected lock path %q", first.Path())
	}

	if _, err := runlock.Acquire(path); !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	second, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	_ = second.Release()
}

func TestReleaseNilLock(t *testing.T) {
	var l *runlock.Lock
	if err := l.Release(); err != nil {
		t.Fatalf("expected nil release to succeed, got %v", err)
	}
}
