package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jonas-schievink/irq"
)

// Result is the outcome of running a scenario.
type Result struct {
	Scenario string
	// Counts is the number of handler invocations per source.
	Counts map[string]uint64
	// Shared is the final value of the counter all handlers increment
	// through the priority lock.
	Shared uint64
	// LockMisses counts high-priority handlers that found the shared
	// counter locked and skipped their update.
	LockMisses uint64
	Stats      []SourceStats
}

// Run executes a scenario: it declares the scenario's lines, opens a scope,
// registers one counting handler per source, and replays the event list
// through a Controller.
//
// All handlers funnel into one shared counter guarded by a PriorityLock.
// Low-priority handlers take the blocking half and, while holding the
// guard, raise the event's preempt sources; high-priority handlers take the
// fail-fast half and skip the update when the low side holds the lock.
func Run(sc *Scenario, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	lines, err := irq.Declare(sc.SourceNames()...)
	if err != nil {
		return nil, err
	}
	levels := sc.Levels()
	ctrl, err := New(lines, levels, WithLogger(log))
	if err != nil {
		return nil, err
	}

	res := &Result{
		Scenario: sc.Name,
		Counts:   make(map[string]uint64, len(sc.Sources)),
	}

	var shared irq.PriorityLock[uint64]
	lowHalf, highHalf := shared.Split()

	// Preempt sources of the event currently being fired; the low handler
	// raises them while it holds the shared guard.
	var preempt []string

	var runErr error
	lines.Scope(func(s *irq.Scope) {
		for _, src := range sc.Sources {
			name := src.Name
			line, _ := lines.Line(name)

			var handler func()
			if levels[name] == High {
				handler = func() {
					res.Counts[name]++
					guard, err := highHalf.TryLock()
					if err != nil {
						res.LockMisses++
						log.Debug("shared counter busy, skipping update",
							zap.String("source", name))
						return
					}
					*guard.Get()++
					guard.Unlock()
				}
			} else {
				handler = func() {
					res.Counts[name]++
					guard := lowHalf.Lock()
					*guard.Get()++
					burst := preempt
					preempt = nil
					for _, p := range burst {
						// Validated against the declared sources up front.
						if err := ctrl.Trigger(p); err != nil {
							panic(err)
						}
					}
					guard.Unlock()
				}
			}
			if err := s.RegisterFunc(line, handler); err != nil {
				runErr = fmt.Errorf("sim: run %q: %w", sc.Name, err)
				return
			}
		}

		for _, ev := range sc.Events {
			repeat := ev.Repeat
			if repeat == 0 {
				repeat = 1
			}
			for i := 0; i < repeat; i++ {
				preempt = append([]string(nil), ev.Preempt...)
				if err := ctrl.Trigger(ev.Fire); err != nil {
					runErr = fmt.Errorf("sim: run %q: %w", sc.Name, err)
					return
				}
			}
		}
	})
	if runErr != nil {
		return nil, runErr
	}

	guard := lowHalf.Lock()
	res.Shared = *guard.Get()
	guard.Unlock()

	res.Stats = ctrl.Stats()
	return res, nil
}
