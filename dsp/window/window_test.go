package window

import (
	"math"
	"testing"
)

func TestGenerate(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeTriangle} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 65)
			if len(w) != 65 {
				t.Fatalf("len=%d, want 65", len(w))
			}
			for i, v := range w {
				if math.IsNaN(v) || v < 0 || v > 1 {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
			if math.Abs(w[32]-1) > 1e-12 {
				t.Fatalf("center = %v, want 1", w[32])
			}
		})
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("Generate(0) = %v, want nil", w)
	}
	if _, err := Hann(-4); err == nil {
		t.Fatal("Hann(-4) expected error")
	}
}

func TestHannPeriodicEndpoints(t *testing.T) {
	w, err := Hann(8, WithPeriodic())
	if err != nil {
		t.Fatal(err)
	}
	if w[0] != 0 {
		t.Fatalf("w[0] = %v, want 0", w[0])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("w[4] = %v, want 1", w[4])
	}
}

func TestApplyCoefficientsInPlaceMismatch(t *testing.T) {
	if err := ApplyCoefficientsInPlace(make([]float64, 3), make([]float64, 4)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestGrainEnvelopeTriangle(t *testing.T) {
	tests := []struct{ phase, want float64 }{
		{0, 0}, {0.5, 0.5}, {1, 1}, {1.5, 0.5}, {2, 0}, {2.5, 0}, {-1, 0},
	}
	for _, tt := range tests {
		if got := GrainEnvelope(tt.phase, 0); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("GrainEnvelope(%v, 0) = %v, want %v", tt.phase, got, tt.want)
		}
	}
}

func TestGrainEnvelopeHann(t *testing.T) {
	for phase := 0.01; phase < 2; phase += 0.013 {
		want := 0.5 - 0.5*math.Cos(math.Pi*phase)
		got := GrainEnvelope(phase, 1)
		if math.Abs(got-want) > 1e-5 {
			t.Fatalf("GrainEnvelope(%v, 1) = %v, want %v", phase, got, want)
		}
	}
}

func TestGrainEnvelopeBlendBetweenShapes(t *testing.T) {
	phase := 0.3
	tri := GrainEnvelope(phase, 0)
	hann := GrainEnvelope(phase, 1)
	mid := GrainEnvelope(phase, 0.5)
	if math.Abs(mid-0.5*(tri+hann)) > 1e-12 {
		t.Fatalf("blend = %v, want %v", mid, 0.5*(tri+hann))
	}
}
