package core

import (
	"math"
	"math/rand"
	"testing"
)

func floatNear(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestNewSinCos(t *testing.T) {
	testCases := []struct {
		theta    float32
		sin, cos float32
	}{
		{0, 0, 1},
		{float32(math.Pi / 2), 1, 0},
		{float32(math.Pi), 0, -1},
		{float32(3 * math.Pi / 2), -1, 0},
	}

	for _, tc := range testCases {
		sc := NewSinCos(tc.theta)
		if !floatNear(sc.Sin, tc.sin, 1e-6) || !floatNear(sc.Cos, tc.cos, 1e-6) {
			t.Errorf("NewSinCos(%v) = (sin %v, cos %v), want (%v, %v)",
				tc.theta, sc.Sin, sc.Cos, tc.sin, tc.cos)
		}
	}
}

func TestDqTransformAligned(t *testing.T) {
	// A balanced three-phase set aligned with theta=0 lands entirely
	// on the d axis.
	sc := NewSinCos(0)
	dq := NewDqTransform(sc, 1.0, -0.5, -0.5)

	if !floatNear(dq.D, 1.0, 1e-6) {
		t.Errorf("d = %v, want 1.0", dq.D)
	}
	if !floatNear(dq.Q, 0.0, 1e-6) {
		t.Errorf("q = %v, want 0.0", dq.Q)
	}
}

func TestDqTransformQuadrature(t *testing.T) {
	// Rotating the frame by 90 degrees electrical moves the same
	// phase currents onto the -q axis.
	sc := NewSinCos(float32(math.Pi / 2))
	dq := NewDqTransform(sc, 1.0, -0.5, -0.5)

	if !floatNear(dq.D, 0.0, 1e-6) {
		t.Errorf("d = %v, want 0.0", dq.D)
	}
	if !floatNear(dq.Q, -1.0, 1e-6) {
		t.Errorf("q = %v, want -1.0", dq.Q)
	}
}

func TestDqRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		d := float32(rng.Float64()*20 - 10)
		q := float32(rng.Float64()*20 - 10)
		theta := float32(rng.Float64() * 2 * math.Pi)

		sc := NewSinCos(theta)
		idt := NewInverseDqTransform(sc, d, q)
		dq := NewDqTransform(sc, idt.A, idt.B, idt.C)

		if !floatNear(dq.D, d, 1e-4) || !floatNear(dq.Q, q, 1e-4) {
			t.Fatalf("round trip at theta=%v: (%v, %v) -> (%v, %v)",
				theta, d, q, dq.D, dq.Q)
		}
	}
}

func TestInverseDqSumsToZero(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 1000; i++ {
		sc := NewSinCos(float32(rng.Float64() * 2 * math.Pi))
		idt := newRandomInverse(rng, sc)
		sum := idt.A + idt.B + idt.C
		if !floatNear(sum, 0, 1e-4) {
			t.Fatalf("phase sum %v, want 0 (a=%v b=%v c=%v)", sum, idt.A, idt.B, idt.C)
		}
	}
}

func newRandomInverse(rng *rand.Rand, sc SinCos) InverseDqTransform {
	return NewInverseDqTransform(sc,
		float32(rng.Float64()*20-10),
		float32(rng.Float64()*20-10))
}

func TestLimit(t *testing.T) {
	testCases := []struct {
		in, lo, hi, want float32
	}{
		{0.5, 0.1, 0.9, 0.5},
		{-1.0, 0.1, 0.9, 0.1},
		{2.0, 0.1, 0.9, 0.9},
		{0.1, 0.1, 0.9, 0.1},
		{0.9, 0.1, 0.9, 0.9},
	}

	for _, tc := range testCases {
		if got := Limit(tc.in, tc.lo, tc.hi); got != tc.want {
			t.Errorf("Limit(%v, %v, %v) = %v, want %v", tc.in, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestMapConfig(t *testing.T) {
	testCases := []struct {
		value int
		want  int
	}{
		{0, 0},
		{3, 0},
		{4, 1},
		{15, 1},
		{100, 5},
		{480, 7},
		{10000, 7},
	}

	for _, tc := range testCases {
		if got := MapConfig(SampleCycles, tc.value); got != tc.want {
			t.Errorf("MapConfig(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestWrapUnit(t *testing.T) {
	testCases := []struct {
		in, want float32
	}{
		{0, 0},
		{0.25, 0.25},
		{1.0, 0},
		{1.75, 0.75},
		{-0.25, 0.75},
		{-3.5, 0.5},
	}

	for _, tc := range testCases {
		got := wrapUnit(tc.in)
		if !floatNear(got, tc.want, 1e-6) {
			t.Errorf("wrapUnit(%v) = %v, want %v", tc.in, got, tc.want)
		}
		if got < 0 || got >= 1 {
			t.Errorf("wrapUnit(%v) = %v out of [0, 1)", tc.in, got)
		}
	}
}
