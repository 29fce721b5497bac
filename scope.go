package irq

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRegistered is returned when a source is registered a second
	// time before its slot has been cleared. The first registration stays
	// installed; it is never overwritten.
	ErrAlreadyRegistered = errors.New("irq: handler already registered")

	// ErrUnknownSource is returned when a line does not belong to the set
	// the scope was opened on.
	ErrUnknownSource = errors.New("irq: unknown interrupt source")
)

// Scope grants the right to register handlers against a declared line set
// for the duration of one call to Lines.Scope. A Scope must not be retained
// past the body it was handed to.
type Scope struct {
	lines      *Lines
	registered map[*Line]struct{}
}

// Scope runs body with registration rights for the set. When body returns,
// normally or by panicking, every slot of the set is reset to the empty
// sentinel, so no handler can outlive the stack frames it captured.
func (ls *Lines) Scope(body func(*Scope)) {
	s := &Scope{
		lines:      ls,
		registered: make(map[*Line]struct{}),
	}
	defer ls.DeregisterAll()
	body(s)
}

// Register installs handler into line's slot for the remainder of the scope.
//
// Each source may be registered at most once per scope: a second registration
// would give a firing interrupt two live aliases to the same mutable capture,
// so it is rejected with ErrAlreadyRegistered instead of overwriting. A line
// from a different declaration set is rejected with ErrUnknownSource.
func (s *Scope) Register(line *Line, handler *Handler) error {
	if line == nil {
		return fmt.Errorf("%w: nil line", ErrUnknownSource)
	}
	if owned, ok := s.lines.byName[line.name]; !ok || owned != line {
		return fmt.Errorf("%w: %s", ErrUnknownSource, line.name)
	}
	if handler == nil {
		return fmt.Errorf("irq: register %s: nil handler", line.name)
	}
	if _, dup := s.registered[line]; dup {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, line.name)
	}
	if line.registered() {
		// Occupied by another still-active scope over the same set.
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, line.name)
	}
	s.registered[line] = struct{}{}
	line.slot.Store(handler)
	return nil
}

// RegisterFunc wraps f in a Handler and registers it. Convenience for the
// common closure-over-stack-locals case.
func (s *Scope) RegisterFunc(line *Line, f func()) error {
	return s.Register(line, NewHandler(f))
}
