package core

import (
	"errors"
	"testing"
)

func TestComputeParameterHash_OrderIndependent(t *testing.T) {
	a := ComputeParameterHash(map[string]interface{}{"seed": int64(42), "trials": 1000, "length_mean": 10.0})
	b := ComputeParameterHash(map[string]interface{}{"length_mean": 10.0, "trials": 1000, "seed": int64(42)})

	if !a.Equals(b) {
		t.Errorf("Hashes differ for identical inputs: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
}

func TestComputeParameterHash_ChangesWithInput(t *testing.T) {
	base := ComputeParameterHash(map[string]interface{}{"seed": int64(42)})
	other := ComputeParameterHash(map[string]interface{}{"seed": int64(43)})

	if base.Equals(other) {
		t.Error("Expected different seeds to produce different hashes")
	}
	if len(base.Short()) != 12 {
		t.Errorf("Expected 12 character short hash, got %q", base.Short())
	}
}

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidInputError("trial count", "must be positive")
	if !IsInvalidInputError(err) {
		t.Errorf("Expected invalid input classification for %v", err)
	}
	if IsParseError(err) {
		t.Error("Invalid input must not classify as parse error")
	}

	perr := NewParseError("length mean", "abc", errors.New("bad digit"))
	if !IsParseError(perr) {
		t.Errorf("Expected parse error classification for %v", perr)
	}

	if !errors.Is(NewDegenerateTrialError(3, -1), ErrDegenerateTrial) {
		t.Error("Expected degenerate trial error to wrap ErrDegenerateTrial")
	}
}
