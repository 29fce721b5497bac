// Package sim provides a deterministic host-side interrupt controller for
// developing and testing code built on the irq package. It models a
// single-core target with two priority levels: a high-priority trigger
// raised while a low-priority handler is running dispatches nested, exactly
// like hardware preemption, while a low-priority trigger raised during any
// dispatch stays pending until the controller returns to base level.
package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonas-schievink/irq"
)

// Priority is the interrupt level of a simulated source.
type Priority int

const (
	Low Priority = iota
	High
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority parses "low" or "high".
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return Low, nil
	case "high":
		return High, nil
	default:
		return 0, fmt.Errorf("sim: invalid priority %q", s)
	}
}

// Controller drives a declared line set the way an interrupt controller
// would. It is not safe for concurrent use: the model is a single core where
// all "concurrency" is preemption, expressed as nested Trigger calls made
// from inside handlers.
type Controller struct {
	lines *irq.Lines
	level map[string]Priority
	log   *zap.Logger

	depth   int
	pending []request
	stats   map[string]*sourceStats
}

type request struct {
	line *irq.Line
	at   time.Time
}

type sourceStats struct {
	dispatches int
	deferred   int
	latencies  []float64 // seconds from request to dispatch
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a structured logger for trigger/dispatch events.
// The default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a controller over lines. levels assigns a priority per source
// name; sources not listed default to Low. A level for an undeclared source
// is a configuration error.
func New(lines *irq.Lines, levels map[string]Priority, opts ...Option) (*Controller, error) {
	if lines == nil {
		return nil, fmt.Errorf("sim: nil line set")
	}
	c := &Controller{
		lines: lines,
		level: make(map[string]Priority, len(lines.Names())),
		log:   zap.NewNop(),
		stats: make(map[string]*sourceStats),
	}
	for name, p := range levels {
		if _, ok := lines.Line(name); !ok {
			return nil, fmt.Errorf("sim: level for undeclared source %q", name)
		}
		if p != Low && p != High {
			return nil, fmt.Errorf("sim: invalid level %d for source %q", int(p), name)
		}
		c.level[name] = p
	}
	for _, name := range lines.Names() {
		if _, ok := c.level[name]; !ok {
			c.level[name] = Low
		}
		c.stats[name] = &sourceStats{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Priority returns the configured level of a source.
func (c *Controller) Priority(name string) Priority {
	return c.level[name]
}

// Trigger models a hardware interrupt request for the named source.
//
// A High request always dispatches immediately; when made from inside a
// running handler it nests, which is how the simulation expresses
// preemption. A Low request made while any dispatch is in progress is
// queued and dispatched once the controller drops back to base level.
//
// Dispatch invokes the line's trampoline, so triggering a source with no
// registered handler panics.
func (c *Controller) Trigger(name string) error {
	line, ok := c.lines.Line(name)
	if !ok {
		return fmt.Errorf("sim: trigger: %w: %s", irq.ErrUnknownSource, name)
	}
	now := time.Now()
	if c.level[name] == High || c.depth == 0 {
		c.dispatch(line, now)
		c.drain()
		return nil
	}

	c.stats[name].deferred++
	c.pending = append(c.pending, request{line: line, at: now})
	c.log.Debug("request deferred",
		zap.String("source", name),
		zap.Int("depth", c.depth),
		zap.Int("queued", len(c.pending)))
	return nil
}

func (c *Controller) dispatch(line *irq.Line, requested time.Time) {
	name := line.Name()
	st := c.stats[name]
	start := time.Now()

	c.depth++
	c.log.Debug("dispatch",
		zap.String("source", name),
		zap.Stringer("priority", c.level[name]),
		zap.Int("depth", c.depth))

	line.Trampoline()

	c.depth--
	st.dispatches++
	st.latencies = append(st.latencies, start.Sub(requested).Seconds())
}

// drain runs pending low-priority requests once the controller is back at
// base level. Handlers dispatched here may queue further requests; those are
// picked up by the same loop.
func (c *Controller) drain() {
	if c.depth != 0 {
		return
	}
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.dispatch(next.line, next.at)
	}
}
