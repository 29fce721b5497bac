// Package irq provides utilities for interrupt handling on small targets:
//
//   - A scoped interrupt registry. Declare the sources you want to hook with
//     [Declare], then use [Lines.Scope] to enter a scope in which handlers
//     closing over stack-local data can be registered. All handlers are
//     deregistered when the scope ends, on every exit path, so a trampoline
//     can never invoke a handler whose frame is gone.
//
//   - A [PriorityLock] for sharing mutable data between two contexts running
//     at different interrupt priorities. It uses Peterson's algorithm, built
//     from single-word atomic loads and stores only, so it works on targets
//     without compare-and-swap.
//
// The package itself performs no I/O and knows nothing about any particular
// interrupt controller. Binding a [Line.Trampoline] to a real vector is the
// platform layer's job; the sim package provides a host-side controller for
// development and testing.
package irq
