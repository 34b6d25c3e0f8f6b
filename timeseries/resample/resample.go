// Package resample converts unevenly sampled frames onto a uniform time grid.
//
// The spectral detectors in this module assume even sampling but do not
// enforce it; hosts run their input through this package first when the
// source is not already uniform.
package resample

import (
	"fmt"
	"sort"
	"time"

	"github.com/cwbudde/algo-anomaly/timeseries"
)

// Uniform resamples every channel of f onto an evenly spaced grid from the
// first to the last timestamp using piecewise linear interpolation.
//
// A non-positive granularity is inferred as the median inter-sample gap.
// Frames with fewer than 2 samples are returned unchanged.
func Uniform(f timeseries.Frame, granularity time.Duration) (timeseries.Frame, error) {
	if f.Len() < 2 {
		return f, nil
	}

	if granularity <= 0 {
		granularity = medianGap(f.Times)
	}
	if granularity <= 0 {
		return timeseries.Frame{}, fmt.Errorf("resample: cannot infer granularity from %d samples", f.Len())
	}

	first := f.Times[0]
	last := f.Times[f.Len()-1]
	steps := int(last.Sub(first)/granularity) + 1

	times := make([]time.Time, steps)
	for i := range times {
		times[i] = first.Add(time.Duration(i) * granularity)
	}

	src := make([]float64, f.Len())
	for i, t := range f.Times {
		src[i] = float64(t.UnixNano())
	}

	channels := make([][]float64, f.ChannelCount())
	for c := range channels {
		channels[c] = interpolate(src, f.Channel(c), times)
	}

	return timeseries.NewFrame(times, channels, f.Names)
}

// interpolate evaluates the piecewise linear function through (x, y) at the
// query timestamps. Queries outside the range clamp to the edge values.
func interpolate(x, y []float64, queries []time.Time) []float64 {
	out := make([]float64, len(queries))
	for i, t := range queries {
		q := float64(t.UnixNano())
		switch {
		case q <= x[0]:
			out[i] = y[0]
		case q >= x[len(x)-1]:
			out[i] = y[len(y)-1]
		default:
			j := sort.SearchFloat64s(x, q)
			if x[j] == q {
				out[i] = y[j]
				continue
			}
			x0, x1 := x[j-1], x[j]
			frac := (q - x0) / (x1 - x0)
			out[i] = y[j-1] + frac*(y[j]-y[j-1])
		}
	}
	return out
}

func medianGap(times []time.Time) time.Duration {
	gaps := make([]time.Duration, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps[i-1] = times[i].Sub(times[i-1])
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps[len(gaps)/2]
}
