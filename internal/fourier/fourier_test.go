package fourier

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-anomaly/internal/testutil"
)

// naiveDFT is the O(n^2) reference transform.
func naiveDFT(src []complex128) []complex128 {
	n := len(src)
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for j := 0; j < n; j++ {
			theta := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			sum += src[j] * cmplx.Exp(complex(0, theta))
		}
		out[k] = sum
	}
	return out
}

func randomSignal(n int, seed int64) []complex128 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	return out
}

func TestForwardMatchesNaiveDFT(t *testing.T) {
	// Mix of power-of-two (direct plan) and other lengths (Bluestein).
	for _, n := range []int{2, 3, 4, 5, 7, 8, 12, 16, 30, 64, 100, 205} {
		src := randomSignal(n, int64(n))

		plan, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}
		got := make([]complex128, n)
		if err := plan.Forward(got, src); err != nil {
			t.Fatalf("Forward(%d): %v", n, err)
		}

		testutil.RequireComplexNearlyEqual(t, got, naiveDFT(src), 1e-9)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	for _, n := range []int{2, 5, 8, 30, 64, 205} {
		src := randomSignal(n, int64(100+n))

		plan, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}
		freq := make([]complex128, n)
		if err := plan.Forward(freq, src); err != nil {
			t.Fatalf("Forward(%d): %v", n, err)
		}
		back := make([]complex128, n)
		if err := plan.Inverse(back, freq); err != nil {
			t.Fatalf("Inverse(%d): %v", n, err)
		}

		testutil.RequireComplexNearlyEqual(t, back, src, 1e-9)
	}
}

func TestInverseNormalization(t *testing.T) {
	// The inverse of a constant spectrum is an impulse of the same height:
	// dst[0] = sum/n = 1 for a spectrum of all ones.
	const n = 12
	freq := make([]complex128, n)
	for i := range freq {
		freq[i] = 1
	}

	plan, err := New(n)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dst := make([]complex128, n)
	if err := plan.Inverse(dst, freq); err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	want := make([]complex128, n)
	want[0] = 1
	testutil.RequireComplexNearlyEqual(t, dst, want, 1e-12)
}

func TestForwardImpulse(t *testing.T) {
	// DFT of a unit impulse is all ones, for any length.
	for _, n := range []int{6, 8, 13} {
		src := make([]complex128, n)
		src[0] = 1

		plan, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}
		got := make([]complex128, n)
		if err := plan.Forward(got, src); err != nil {
			t.Fatalf("Forward(%d): %v", n, err)
		}

		want := make([]complex128, n)
		for i := range want {
			want[i] = 1
		}
		testutil.RequireComplexNearlyEqual(t, got, want, 1e-12)
	}
}

func TestNewInvalidLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New(n); err == nil {
			t.Errorf("New(%d): expected error", n)
		}
	}
}

func TestForwardLengthMismatch(t *testing.T) {
	plan, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := plan.Forward(make([]complex128, 8), make([]complex128, 7)); err == nil {
		t.Error("Forward: expected length mismatch error")
	}
	if err := plan.Inverse(make([]complex128, 7), make([]complex128, 8)); err == nil {
		t.Error("Inverse: expected length mismatch error")
	}
}
