package scoring

import (
	"math"
	"testing"
)

func TestResolveWeightsNilReturnsDefaults(t *testing.T) {
	want := Weights{Demographic: 0.25, Footfall: 0.25, Affluence: 0.20, Competition: 0.20, Accessibility: 0.10}

	if got := ResolveWeights(nil); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got := DefaultWeights(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if math.Abs(want.Sum()-1.0) > 1e-9 {
		t.Fatalf("default weights should sum to 1, got %v", want.Sum())
	}
}

func TestResolveWeightsEmptyOverridesReturnsDefaults(t *testing.T) {
	if got := ResolveWeights(&WeightOverrides{}); got != DefaultWeights() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestResolveWeightsMergesPerKeyWithoutRenormalising(t *testing.T) {
	got := ResolveWeights(&WeightOverrides{Demographic: float64Ptr(0.5)})
	want := Weights{Demographic: 0.5, Footfall: 0.25, Affluence: 0.20, Competition: 0.20, Accessibility: 0.10}

	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if math.Abs(got.Sum()-1.25) > 1e-9 {
		t.Fatalf("expected un-normalised sum 1.25, got %v", got.Sum())
	}
}

func TestResolveWeightsAcceptsOutOfRangeValues(t *testing.T) {
	got := ResolveWeights(&WeightOverrides{Competition: float64Ptr(-0.3), Accessibility: float64Ptr(4)})
	if got.Competition != -0.3 || got.Accessibility != 4 {
		t.Fatalf("override values should pass through unchanged, got %+v", got)
	}
}

func TestResolveWeightsDoesNotShareState(t *testing.T) {
	first := ResolveWeights(nil)
	first.Demographic = 9

	if ResolveWeights(nil).Demographic != 0.25 {
		t.Fatal("mutating a returned weight set must not change the defaults")
	}
}

func TestParseWeightOverrides(t *testing.T) {
	for _, raw := range []string{"", "  ", "null"} {
		overrides, err := ParseWeightOverrides([]byte(raw))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if overrides != nil {
			t.Fatalf("expected nil overrides for %q", raw)
		}
	}

	overrides, err := ParseWeightOverrides([]byte(`{"footfall":0.4,"unknown":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ResolveWeights(overrides)
	if got.Footfall != 0.4 || got.Demographic != 0.25 {
		t.Fatalf("unexpected merged weights %+v", got)
	}

	if _, err := ParseWeightOverrides([]byte(`{"footfall":"high"}`)); err == nil {
		t.Fatal("expected error for non-numeric override")
	}
}
