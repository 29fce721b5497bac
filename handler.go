package irq

import (
	"fmt"
	"sync/atomic"
)

// Handler wraps a zero-argument callback so that a trampoline can invoke it
// without knowing anything about the callback's captured state.
type Handler struct {
	f func()
}

// NewHandler wraps f as an interrupt handler. The wrapper does nothing until
// it is registered within a scope.
func NewHandler(f func()) *Handler {
	if f == nil {
		panic("irq: nil handler function")
	}
	return &Handler{f: f}
}

// Invoke runs the wrapped callback.
func (h *Handler) Invoke() {
	h.f()
}

// Line is a single declared interrupt source: a name plus one word-sized
// slot holding the currently registered handler. A nil slot means no handler
// is registered. The slot is written only by scope registration and
// deregistration and read only by the trampoline; a release store paired
// with an acquire load makes a completed registration visible to a
// preempting trampoline.
type Line struct {
	name string
	slot atomic.Pointer[Handler]
}

// Name returns the source name the line was declared with.
func (l *Line) Name() string {
	return l.name
}

// Trampoline dispatches the interrupt. The platform layer binds this method
// to the hardware vector (or a simulated controller calls it directly); it
// takes no arguments and returns nothing.
//
// Firing a line with no registered handler means a source was enabled at the
// hardware level without a software registration. That is a configuration
// bug, so the trampoline panics rather than silently dropping the interrupt.
//
// The underlying interrupt line must not retrigger while its own trampoline
// is executing.
func (l *Line) Trampoline() {
	h := l.slot.Load()
	if h == nil {
		panic("irq: no handler registered for " + l.name)
	}
	h.Invoke()
}

// registered reports whether a handler is currently installed.
func (l *Line) registered() bool {
	return l.slot.Load() != nil
}

// Lines is a set of interrupt sources declared together. It is the Go
// rendering of a hooked interrupt enum: one Line (slot + trampoline) per
// named source, established once at construction time.
type Lines struct {
	byName map[string]*Line
	order  []*Line
}

// Declare establishes one interrupt line per name. It is meant to be called
// once during program initialization, before any line can fire.
func Declare(names ...string) (*Lines, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("irq: declare: no interrupt sources named")
	}
	ls := &Lines{
		byName: make(map[string]*Line, len(names)),
		order:  make([]*Line, 0, len(names)),
	}
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("irq: declare: empty source name")
		}
		if _, dup := ls.byName[name]; dup {
			return nil, fmt.Errorf("irq: declare: duplicate source %q", name)
		}
		line := &Line{name: name}
		ls.byName[name] = line
		ls.order = append(ls.order, line)
	}
	return ls, nil
}

// MustDeclare is like Declare but panics on error. Use for package-level
// declarations that mirror a fixed vector table.
func MustDeclare(names ...string) *Lines {
	ls, err := Declare(names...)
	if err != nil {
		panic(err)
	}
	return ls
}

// Line returns the declared line with the given name.
func (ls *Lines) Line(name string) (*Line, bool) {
	l, ok := ls.byName[name]
	return l, ok
}

// Names returns the source names in declaration order.
func (ls *Lines) Names() []string {
	names := make([]string, len(ls.order))
	for i, l := range ls.order {
		names[i] = l.name
	}
	return names
}

// DeregisterAll stores the empty sentinel into every slot of the set. It is
// total and idempotent: lines that were never registered are unaffected, and
// calling it again is harmless. Scope exit calls this on every path; it is
// exported so platform reset code can force a known-clean state.
func (ls *Lines) DeregisterAll() {
	for _, l := range ls.order {
		l.slot.Store(nil)
	}
}
