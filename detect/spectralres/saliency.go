package spectralres

import (
	"fmt"
	"math"
	"math/cmplx"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-anomaly/internal/fourier"
)

// saliencyMap computes the Spectral Residual saliency map of values: forward
// transform, log-amplitude minus its q-wide moving average, reconstruction
// with the original phase, inverse transform, magnitude.
func (d *Detector) saliencyMap(values []float64) ([]float64, error) {
	n := len(values)

	plan, err := fourier.New(n)
	if err != nil {
		return nil, fmt.Errorf("spectralres: %w", err)
	}

	input := make([]complex128, n)
	for i, v := range values {
		input[i] = complex(v, 0)
	}

	spectrum := make([]complex128, n)
	if err := plan.Forward(spectrum, input); err != nil {
		return nil, fmt.Errorf("spectralres: %w", err)
	}

	logAmps := make([]float64, n)
	phases := make([]float64, n)
	for i, c := range spectrum {
		logAmps[i] = math.Log(cmplx.Abs(c))
		phases[i] = cmplx.Phase(c)
	}

	avgLogAmps := smoothSame(logAmps, d.qKernel)

	recon := make([]complex128, n)
	for i := range recon {
		r := math.Exp(logAmps[i] - avgLogAmps[i])
		recon[i] = complex(r*math.Cos(phases[i]), r*math.Sin(phases[i]))
	}

	inverse := make([]complex128, n)
	if err := plan.Inverse(inverse, recon); err != nil {
		return nil, fmt.Errorf("spectralres: %w", err)
	}

	re := make([]float64, n)
	im := make([]float64, n)
	for i, c := range inverse {
		re[i] = real(c)
		im[i] = imag(c)
	}
	saliency := make([]float64, n)
	vecmath.Magnitude(saliency, re, im)

	return saliency, nil
}

// smoothSame convolves v with kernel and returns the centered slice with the
// same length as v: entry i of the output is entry i + (len(kernel)-1)/2 of
// the full convolution, with the kernel truncating at the boundaries.
func smoothSame(v, kernel []float64) []float64 {
	n := len(v)
	q := len(kernel)
	offset := (q - 1) / 2

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		fi := i + offset
		lo := fi - q + 1
		if lo < 0 {
			lo = 0
		}
		hi := fi
		if hi > n-1 {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += v[j] * kernel[fi-j]
		}
		out[i] = sum
	}
	return out
}
