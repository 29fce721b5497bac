package irq

import (
	"errors"
	"testing"
	"time"
)

func TestPriorityLockSimple(t *testing.T) {
	lock := NewPriorityLock(uint32(0))
	low, high := lock.Split()

	guard := low.Lock()
	*guard.Get()++

	if _, err := high.TryLock(); !errors.Is(err, ErrWouldDeadlock) {
		t.Errorf("TryLock while low holds = %v, want ErrWouldDeadlock", err)
	}

	guard.Unlock()

	hg, err := high.TryLock()
	if err != nil {
		t.Fatalf("TryLock after release: %v", err)
	}
	if *hg.Get() != 1 {
		t.Errorf("*hg.Get() = %d, want 1", *hg.Get())
	}
	*hg.Get()++
	hg.Unlock()

	lg := low.Lock()
	if *lg.Get() != 2 {
		t.Errorf("*lg.Get() = %d, want 2", *lg.Get())
	}
	lg.Unlock()
}

func TestPriorityLockZeroValue(t *testing.T) {
	var lock PriorityLock[uint64]
	low, high := lock.Split()

	g := low.Lock()
	*g.Get() = 7
	g.Unlock()

	hg, err := high.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if *hg.Get() != 7 {
		t.Errorf("*hg.Get() = %d, want 7", *hg.Get())
	}
	hg.Unlock()
}

func TestTryLockFailsFast(t *testing.T) {
	lock := NewPriorityLock(0)
	low, high := lock.Split()

	g := low.Lock()
	defer g.Unlock()

	// A failed attempt must return promptly, not spin on the holder.
	done := make(chan error, 1)
	go func() {
		_, err := high.TryLock()
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrWouldDeadlock) {
			t.Errorf("TryLock = %v, want ErrWouldDeadlock", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("TryLock blocked instead of failing fast")
	}
}

func TestFailedTryLockLeavesLockUsable(t *testing.T) {
	lock := NewPriorityLock(0)
	low, high := lock.Split()

	g := low.Lock()
	if _, err := high.TryLock(); err == nil {
		t.Fatal("TryLock while held succeeded")
	}
	g.Unlock()

	// The withdrawn high claim must not wedge either half.
	g = low.Lock()
	g.Unlock()

	hg, err := high.TryLock()
	if err != nil {
		t.Fatalf("TryLock after recovery: %v", err)
	}
	hg.Unlock()
}

func TestLowLockWaitsForHighRelease(t *testing.T) {
	lock := NewPriorityLock(0)
	low, high := lock.Split()

	hg, err := high.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		*hg.Get() = 42
		close(released)
		hg.Unlock()
	}()

	g := low.Lock()
	select {
	case <-released:
	default:
		t.Error("low.Lock returned while high still held the lock")
	}
	if *g.Get() != 42 {
		t.Errorf("*g.Get() = %d, want 42", *g.Get())
	}
	g.Unlock()
}

func TestGuardUnlockOnPanicPath(t *testing.T) {
	lock := NewPriorityLock(0)
	low, high := lock.Split()

	func() {
		defer func() { recover() }()
		g := low.Lock()
		defer g.Unlock()
		panic("handler aborted")
	}()

	if _, err := high.TryLock(); err != nil {
		t.Errorf("TryLock after deferred unlock = %v, want success", err)
	}
}
