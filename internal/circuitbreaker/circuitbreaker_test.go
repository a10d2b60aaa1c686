package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/aptos-dex/internal/apperror"
)

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	cfg := DefaultConfig("node")
	cfg.FailureThreshold = 2

	var transitions []gobreaker.State
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	}

	cb := New[int](cfg)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open state, got %v", cb.State())
	}

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	if apperror.GetCode(err) != apperror.CodeCircuitOpen {
		t.Errorf("expected CIRCUIT_OPEN, got %v", err)
	}
	if apperror.KindOf(err) != apperror.KindNetworkFailure {
		t.Errorf("expected network failure kind, got %v", apperror.KindOf(err))
	}

	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Errorf("unexpected transitions: %v", transitions)
	}
}

func TestCircuitBreaker_IgnoresExcludedErrors(t *testing.T) {
	notFound := errors.New("not found")

	cfg := DefaultConfig("node")
	cfg.FailureThreshold = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, notFound) }

	cb := New[int](cfg)
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, notFound })
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed state, got %v", cb.State())
	}
}
