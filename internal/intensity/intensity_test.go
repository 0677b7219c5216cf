package intensity

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func inUnitRange(t *testing.T, name string, out []float64) {
	t.Helper()
	for i, x := range out {
		if x < 0 || x > 1 || math.IsNaN(x) {
			t.Errorf("%s[%d] = %v, outside [0, 1]", name, i, x)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %q, %v", s, got, err)
		}
	}
	if got, _ := ParseStrategy(""); got != ExpDistNorm {
		t.Errorf("expected default expdist-norm, got %q", got)
	}
	if _, err := ParseStrategy("sparkle"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestMap_AllStrategiesBounded(t *testing.T) {
	scores := []float64{-0.2, 0.05, 0.31, 0.12, 0.31}
	for _, s := range Strategies() {
		out, err := Map(s, scores, 0.1, DefaultParams(true))
		if err != nil {
			t.Fatalf("Map(%s) failed: %v", s, err)
		}
		if len(out) != len(scores) {
			t.Errorf("Map(%s) returned %d values, want %d", s, len(out), len(scores))
		}
		inUnitRange(t, string(s), out)
	}
}

func TestMap_Unknown(t *testing.T) {
	if _, err := Map("nope", []float64{1}, 0, DefaultParams(true)); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestExpDistMap(t *testing.T) {
	out := ExpDistMap([]float64{0, 0.1}, true)
	if !near(out[1], 1) {
		t.Errorf("expected max to map to 1, got %v", out[1])
	}
	if !near(out[0], math.Exp(-3.5)) {
		t.Errorf("expected exp(-3.5), got %v", out[0])
	}

	raw := ExpDistMap([]float64{0, 0.1}, false)
	if !near(raw[0], math.Exp(-4.85)) {
		t.Errorf("expected exp(-4.85) without subtraction, got %v", raw[0])
	}
}

func TestExpDistMap_LargeScores(t *testing.T) {
	out := ExpDistMap([]float64{20, 10}, false)
	inUnitRange(t, "expdist", out)
	if !near(out[0], 1) {
		t.Errorf("expected max to map to 1, got %v", out[0])
	}
	if !near(out[1], math.Exp(-485)) {
		t.Errorf("expected exp(-485), got %v", out[1])
	}

	out = ExpDistMap([]float64{-1e6, 1e6}, true)
	inUnitRange(t, "expdist", out)
	if out[0] != 0 || out[1] != 1 {
		t.Errorf("expected [0 1], got %v", out)
	}
}

func TestExpDistNormMap(t *testing.T) {
	// abstract 0 extends the range down to 0
	out := ExpDistNormMap([]float64{0.5, 1}, 0)
	if !near(out[1], 1) {
		t.Errorf("expected 1, got %v", out[1])
	}
	if !near(out[0], math.Exp(-2)) {
		t.Errorf("expected exp(-2), got %v", out[0])
	}
}

func TestExpDistNormMap_Degenerate(t *testing.T) {
	out := ExpDistNormMap([]float64{0.3, 0.3}, 0.3)
	for i, x := range out {
		if x != 1 {
			t.Errorf("out[%d] = %v, want 1", i, x)
		}
	}
}

func TestPolynomialMap(t *testing.T) {
	out := PolynomialMap([]float64{0, 0.25, 0.5, 1}, 0, 0.5, 1.6)
	want := []float64{0, 0, 0, 1}
	for i := range want {
		if !near(out[i], want[i]) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	out = PolynomialMap([]float64{0, 0.75}, 0, 0.5, 1)
	// (0.75 - 0.5)/0.5 = 0.5 with power 1, range [0, 0.75] normalizes 0.75 to 1
	if !near(out[1], 1) {
		t.Errorf("expected 1, got %v", out[1])
	}
}

func TestPolynomialMap_NoiseFloor(t *testing.T) {
	out := PolynomialMap([]float64{0.100, 0.105}, 0.101, 0.5, 1.6)
	for i, x := range out {
		if x != 1 {
			t.Errorf("out[%d] = %v, want 1 below noise floor", i, x)
		}
	}
}

func TestPolynomialMap_BadTuningStaysBounded(t *testing.T) {
	inUnitRange(t, "polynomial", PolynomialMap([]float64{0, 0.5, 1}, 0.2, 1, 1.6))
}

func TestParams_Validate(t *testing.T) {
	if err := DefaultParams(false).Validate(); err != nil {
		t.Errorf("default params rejected: %v", err)
	}

	tests := []struct {
		name string
		p    Params
		ok   bool
	}{
		{"zero cutoff", Params{Cutoff: 0, Power: 1.6}, true},
		{"cutoff one", Params{Cutoff: 1, Power: 1.6}, false},
		{"negative cutoff", Params{Cutoff: -0.1, Power: 1.6}, false},
		{"zero power", Params{Cutoff: 0.5, Power: 0}, false},
		{"negative power", Params{Cutoff: 0.5, Power: -2}, false},
		{"nan cutoff", Params{Cutoff: math.NaN(), Power: 1.6}, false},
		{"nan threshold", Params{Cutoff: 0.5, Power: 1.6, Threshold: math.NaN()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestMap_RejectsBadParams(t *testing.T) {
	_, err := Map(Polynomial, []float64{0, 0.5, 1}, 0.2, Params{Cutoff: 1, Power: 1.6})
	if err == nil {
		t.Error("expected error for cutoff 1")
	}
}

func TestRankMap(t *testing.T) {
	out := RankMap([]float64{0.9, 0.1, 0.5, 0.3})
	// ascending ranks: 0.1→0, 0.3→1, 0.5→2, 0.9→3
	want := []float64{
		math.Exp(-(1 - 3.0/4) * 10),
		math.Exp(-10),
		math.Exp(-(1 - 2.0/4) * 10),
		math.Exp(-(1 - 1.0/4) * 10),
	}
	for i := range want {
		if !near(out[i], want[i]) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestBinaryMap(t *testing.T) {
	out := BinaryMap([]float64{-0.1, 0, 0.2}, 0)
	want := []float64{0, 0, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestEmptyScores(t *testing.T) {
	for _, s := range Strategies() {
		out, err := Map(s, nil, 0, DefaultParams(false))
		if err != nil {
			t.Fatalf("Map(%s) failed: %v", s, err)
		}
		if len(out) != 0 {
			t.Errorf("Map(%s) on empty input returned %v", s, out)
		}
	}
}
