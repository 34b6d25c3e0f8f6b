// Package fourier provides forward and inverse discrete Fourier transforms
// for arbitrary lengths on top of the algo-fft backend.
//
// algo-fft plans power-of-two sizes. For other lengths this package applies
// the Bluestein chirp-z identity over a padded power-of-two plan, so every
// transform remains exact and O(n log n).
//
// Conventions: Forward is unnormalized, Inverse scales by 1/n.
package fourier

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Plan computes DFTs of a fixed length n.
//
// A Plan is safe for sequential reuse. Callers that transform concurrently
// should create one Plan per goroutine; the underlying algo-fft plan is not
// documented as goroutine-safe.
type Plan struct {
	n int

	// Direct path, set when n is a power of two.
	direct *algofft.Plan[complex128]

	// Bluestein path.
	m     int // padded convolution length, power of two >= 2n-1
	conv  *algofft.Plan[complex128]
	chirp []complex128 // exp(-i*pi*k^2/n), k = 0..n-1
	bFreq []complex128 // FFT of the chirp filter sequence, length m
}

// New creates a Plan for transforms of length n.
func New(n int) (*Plan, error) {
	if n <= 0 {
		return nil, fmt.Errorf("fourier: plan length must be > 0: %d", n)
	}

	if isPowerOf2(n) {
		direct, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("fourier: fft plan: %w", err)
		}
		return &Plan{n: n, direct: direct}, nil
	}

	m := nextPowerOf2(2*n - 1)
	conv, err := algofft.NewPlan64(m)
	if err != nil {
		return nil, fmt.Errorf("fourier: fft plan: %w", err)
	}

	chirp := make([]complex128, n)
	for k := 0; k < n; k++ {
		// The exponent pi*k^2/n is periodic in k^2 with period 2n; reduce
		// before the float conversion to keep large k accurate.
		kk := (k * k) % (2 * n)
		theta := math.Pi * float64(kk) / float64(n)
		chirp[k] = cmplx.Exp(complex(0, -theta))
	}

	// Chirp filter: b[0] = 1, b[k] = b[m-k] = conj(chirp[k]).
	b := make([]complex128, m)
	b[0] = 1
	for k := 1; k < n; k++ {
		c := cmplx.Conj(chirp[k])
		b[k] = c
		b[m-k] = c
	}

	bFreq := make([]complex128, m)
	if err := conv.Forward(bFreq, b); err != nil {
		return nil, fmt.Errorf("fourier: chirp filter fft: %w", err)
	}

	return &Plan{n: n, m: m, conv: conv, chirp: chirp, bFreq: bFreq}, nil
}

// Len returns the transform length.
func (p *Plan) Len() int { return p.n }

// Forward computes the unnormalized DFT of src into dst.
// Both slices must have length Len.
func (p *Plan) Forward(dst, src []complex128) error {
	if len(dst) != p.n || len(src) != p.n {
		return fmt.Errorf("fourier: forward length mismatch: dst %d, src %d, plan %d", len(dst), len(src), p.n)
	}

	if p.direct != nil {
		if err := p.direct.Forward(dst, src); err != nil {
			return fmt.Errorf("fourier: forward fft: %w", err)
		}
		return nil
	}

	return p.bluestein(dst, src)
}

// Inverse computes the inverse DFT of src into dst, scaled by 1/Len.
// Both slices must have length Len.
func (p *Plan) Inverse(dst, src []complex128) error {
	if len(dst) != p.n || len(src) != p.n {
		return fmt.Errorf("fourier: inverse length mismatch: dst %d, src %d, plan %d", len(dst), len(src), p.n)
	}

	if p.direct != nil {
		if err := p.direct.Inverse(dst, src); err != nil {
			return fmt.Errorf("fourier: inverse fft: %w", err)
		}
		return nil
	}

	// IDFT(x) = conj(DFT(conj(x))) / n.
	tmp := make([]complex128, p.n)
	for i, v := range src {
		tmp[i] = cmplx.Conj(v)
	}
	if err := p.bluestein(tmp, tmp); err != nil {
		return err
	}
	scale := 1 / float64(p.n)
	for i, v := range tmp {
		dst[i] = complex(real(v)*scale, -imag(v)*scale)
	}
	return nil
}

// bluestein evaluates the length-n DFT as a circular convolution of length m.
// dst and src may alias.
func (p *Plan) bluestein(dst, src []complex128) error {
	a := make([]complex128, p.m)
	for k := 0; k < p.n; k++ {
		a[k] = src[k] * p.chirp[k]
	}

	aFreq := make([]complex128, p.m)
	if err := p.conv.Forward(aFreq, a); err != nil {
		return fmt.Errorf("fourier: forward fft: %w", err)
	}
	for i := range aFreq {
		aFreq[i] *= p.bFreq[i]
	}

	c := make([]complex128, p.m)
	if err := p.conv.Inverse(c, aFreq); err != nil {
		return fmt.Errorf("fourier: inverse fft: %w", err)
	}

	for k := 0; k < p.n; k++ {
		dst[k] = c[k] * p.chirp[k]
	}
	return nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// isPowerOf2 returns true if n is a power of 2.
func isPowerOf2(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
