package fourier

import "testing"

func benchmarkForward(b *testing.B, n int) {
	plan, err := New(n)
	if err != nil {
		b.Fatalf("New(%d): %v", n, err)
	}
	src := randomSignal(n, 1)
	dst := make([]complex128, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := plan.Forward(dst, src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkForwardPow2_1024(b *testing.B) { benchmarkForward(b, 1024) }

func BenchmarkForwardBluestein_1000(b *testing.B) { benchmarkForward(b, 1000) }

func BenchmarkForwardBluestein_205(b *testing.B) { benchmarkForward(b, 205) }
