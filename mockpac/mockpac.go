// Package mockpac exports an interface similar to what a generated
// peripheral-access package for a real microcontroller would look like: a
// fixed set of interrupt sources, already hooked up to their trampolines,
// and a way to raise them as hardware would.
//
// It exists so that examples and tests can exercise the irq package without
// a target device. On real hardware the platform layer binds each line's
// trampoline to the vector table instead.
package mockpac

import "github.com/jonas-schievink/irq"

var lines = irq.MustDeclare("INT0", "INT1", "INT2", "INT3")

// The hooked interrupt sources.
var (
	INT0 = mustLine("INT0")
	INT1 = mustLine("INT1")
	INT2 = mustLine("INT2")
	INT3 = mustLine("INT3")
)

func mustLine(name string) *irq.Line {
	l, ok := lines.Line(name)
	if !ok {
		panic("mockpac: undeclared line " + name)
	}
	return l
}

// Sources returns the declared line set, for opening scopes against.
func Sources() *irq.Lines {
	return lines
}

// Raise invokes line's trampoline exactly the way a hardware vector would:
// no arguments, no return value. Raising a line with no registered handler
// panics, matching the fatal configuration-error contract.
func Raise(line *irq.Line) {
	line.Trampoline()
}
