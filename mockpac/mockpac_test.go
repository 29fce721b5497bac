package mockpac

import (
	"testing"

	"github.com/jonas-schievink/irq"
)

func TestRaiseRegistered(t *testing.T) {
	n := 0
	Sources().Scope(func(s *irq.Scope) {
		if err := s.RegisterFunc(INT0, func() { n++ }); err != nil {
			t.Fatalf("Register: %v", err)
		}
		Raise(INT0)
	})
	if n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
}

func TestRaiseUnregisteredPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Raise on unregistered INT3 did not panic")
		}
	}()
	Raise(INT3)
}
