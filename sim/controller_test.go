package sim

import (
	"errors"
	"testing"

	"github.com/jonas-schievink/irq"
)

func TestParsePriority(t *testing.T) {
	if p, err := ParsePriority("low"); err != nil || p != Low {
		t.Errorf("ParsePriority(low) = %v, %v", p, err)
	}
	if p, err := ParsePriority("high"); err != nil || p != High {
		t.Errorf("ParsePriority(high) = %v, %v", p, err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("ParsePriority(urgent) succeeded, want error")
	}
}

func TestNewRejectsUndeclaredLevel(t *testing.T) {
	lines := irq.MustDeclare("TIMER0")
	if _, err := New(lines, map[string]Priority{"UART0": High}); err == nil {
		t.Error("New with level for undeclared source succeeded, want error")
	}
}

func TestTriggerUnknownSource(t *testing.T) {
	lines := irq.MustDeclare("TIMER0")
	ctrl, err := New(lines, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ctrl.Trigger("UART0"); !errors.Is(err, irq.ErrUnknownSource) {
		t.Errorf("Trigger(UART0) = %v, want ErrUnknownSource", err)
	}
}

func TestHighPreemptsLowHandler(t *testing.T) {
	lines := irq.MustDeclare("TIMER0", "UART0")
	timer0, _ := lines.Line("TIMER0")
	uart0, _ := lines.Line("UART0")

	ctrl, err := New(lines, map[string]Priority{"TIMER0": Low, "UART0": High})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var order []string
	lines.Scope(func(s *irq.Scope) {
		if err := s.RegisterFunc(timer0, func() {
			order = append(order, "timer:start")
			if err := ctrl.Trigger("UART0"); err != nil {
				t.Errorf("nested Trigger: %v", err)
			}
			order = append(order, "timer:end")
		}); err != nil {
			t.Fatalf("Register TIMER0: %v", err)
		}
		if err := s.RegisterFunc(uart0, func() {
			order = append(order, "uart")
		}); err != nil {
			t.Fatalf("Register UART0: %v", err)
		}

		if err := ctrl.Trigger("TIMER0"); err != nil {
			t.Fatalf("Trigger TIMER0: %v", err)
		}
	})

	want := []string{"timer:start", "uart", "timer:end"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestLowDeferredUntilBaseLevel(t *testing.T) {
	lines := irq.MustDeclare("TIMER0", "DMA0")
	timer0, _ := lines.Line("TIMER0")
	dma0, _ := lines.Line("DMA0")

	ctrl, err := New(lines, nil) // both default Low
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var order []string
	lines.Scope(func(s *irq.Scope) {
		if err := s.RegisterFunc(timer0, func() {
			order = append(order, "timer:start")
			if err := ctrl.Trigger("DMA0"); err != nil {
				t.Errorf("nested Trigger: %v", err)
			}
			order = append(order, "timer:end")
		}); err != nil {
			t.Fatalf("Register TIMER0: %v", err)
		}
		if err := s.RegisterFunc(dma0, func() {
			order = append(order, "dma")
		}); err != nil {
			t.Fatalf("Register DMA0: %v", err)
		}

		if err := ctrl.Trigger("TIMER0"); err != nil {
			t.Fatalf("Trigger TIMER0: %v", err)
		}
	})

	want := []string{"timer:start", "timer:end", "dma"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	stats := ctrl.Stats()
	for _, st := range stats {
		switch st.Source {
		case "TIMER0":
			if st.Dispatches != 1 || st.Deferred != 0 {
				t.Errorf("TIMER0 stats = %+v, want 1 dispatch, 0 deferred", st)
			}
		case "DMA0":
			if st.Dispatches != 1 || st.Deferred != 1 {
				t.Errorf("DMA0 stats = %+v, want 1 dispatch, 1 deferred", st)
			}
		}
	}
}

func TestStatsLatencies(t *testing.T) {
	lines := irq.MustDeclare("TIMER0")
	timer0, _ := lines.Line("TIMER0")

	ctrl, err := New(lines, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lines.Scope(func(s *irq.Scope) {
		if err := s.RegisterFunc(timer0, func() {}); err != nil {
			t.Fatalf("Register: %v", err)
		}
		for i := 0; i < 3; i++ {
			if err := ctrl.Trigger("TIMER0"); err != nil {
				t.Fatalf("Trigger: %v", err)
			}
		}
	})

	stats := ctrl.Stats()
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	st := stats[0]
	if st.Dispatches != 3 {
		t.Errorf("Dispatches = %d, want 3", st.Dispatches)
	}
	if st.MeanLatency < 0 {
		t.Errorf("MeanLatency = %v, want >= 0", st.MeanLatency)
	}
	if st.P90Latency < 0 {
		t.Errorf("P90Latency = %v, want >= 0", st.P90Latency)
	}
}
