package irq

import (
	"errors"
	"sync/atomic"
)

// ErrWouldDeadlock is returned by HighHalf.TryLock when the low-priority
// side holds or is contending for the lock. Spinning in the high-priority
// context can never succeed, since the preempted low side cannot run to
// release the lock until the high side returns, so the attempt fails fast.
// Callers must handle it (skip the work, degrade, retry on a later
// interrupt); there is no general way to recover.
var ErrWouldDeadlock = errors.New("irq: lock held by low-priority side")

// Peterson indices. The low half is party 0, the high half party 1.
const (
	indexLow  = 0
	indexHigh = 1
)

// PriorityLock shares one value of type T between two execution contexts
// running at different interrupt priorities, using Peterson's algorithm.
// Only single-word atomic loads and stores are used, so the construction
// works on targets without a compare-and-swap instruction.
//
// The zero value is an unlocked lock around T's zero value, suitable for
// static placement. Limitations: exactly two parties, and recursive
// acquisition by the same party deadlocks (low) or always fails (high).
type PriorityLock[T any] struct {
	wants [2]atomic.Bool
	turn  atomic.Uint32
	data  T
}

// NewPriorityLock creates a lock protecting data.
func NewPriorityLock[T any](data T) *PriorityLock[T] {
	return &PriorityLock[T]{data: data}
}

// Split returns the low- and high-priority halves of the lock.
//
// The low half belongs to the lower-priority context (a low-priority
// interrupt or the idle loop) and acquires by blocking. The high half
// belongs to the context that can preempt the low one and acquires
// fallibly. Each half must be used by exactly one party.
func (l *PriorityLock[T]) Split() (*LowHalf[T], *HighHalf[T]) {
	return &LowHalf[T]{lock: l}, &HighHalf[T]{lock: l}
}

func (l *PriorityLock[T]) blockAcquire(index uint32) {
	other := 1 - index
	l.wants[index].Store(true)
	// Yield priority to the other party before waiting on it.
	l.turn.Store(other)
	for l.wants[other].Load() && l.turn.Load() == other {
	}
}

func (l *PriorityLock[T]) tryAcquire(index uint32) bool {
	other := 1 - index
	l.wants[index].Store(true)
	l.turn.Store(other)
	if l.wants[other].Load() && l.turn.Load() == other {
		// The other party holds or is contending and did not yield.
		// Withdraw our claim before reporting failure.
		l.wants[index].Store(false)
		return false
	}
	return true
}

func (l *PriorityLock[T]) release(index uint32) {
	l.wants[index].Store(false)
}

// LowHalf is the blocking half of a PriorityLock.
type LowHalf[T any] struct {
	lock *PriorityLock[T]
}

// Lock acquires the lock, busy-waiting while the high half holds it. The
// wait is a pure spin: the low context cannot be descheduled except by the
// very preemption the loop is waiting out. The previous Guard must have been
// unlocked before Lock is called again.
func (h *LowHalf[T]) Lock() *Guard[T] {
	h.lock.blockAcquire(indexLow)
	return &Guard[T]{lock: h.lock, index: indexLow}
}

// HighHalf is the fail-fast half of a PriorityLock.
type HighHalf[T any] struct {
	lock *PriorityLock[T]
}

// TryLock attempts to acquire the lock without waiting. It returns
// ErrWouldDeadlock when the low half holds or is contending for the lock;
// it never spins, completing in a bounded number of steps either way.
func (h *HighHalf[T]) TryLock() (*Guard[T], error) {
	if !h.lock.tryAcquire(indexHigh) {
		return nil, ErrWouldDeadlock
	}
	return &Guard[T]{lock: h.lock, index: indexHigh}, nil
}

// Guard represents held exclusive access to the protected value. Release it
// with Unlock (typically deferred) on every exit path; a forgotten release
// deadlocks the lock permanently.
type Guard[T any] struct {
	lock  *PriorityLock[T]
	index uint32
}

// Get returns the protected value. Valid only between acquisition and Unlock.
func (g *Guard[T]) Get() *T {
	return &g.lock.data
}

// Unlock releases the owning half's claim on the lock.
func (g *Guard[T]) Unlock() {
	g.lock.release(g.index)
}
