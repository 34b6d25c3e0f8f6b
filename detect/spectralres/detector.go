package spectralres

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/algo-anomaly/timeseries"
)

// Errors returned by Fit and Score.
var (
	ErrMissingTarget    = errors.New("spectralres: missing target index")
	ErrTargetOutOfRange = errors.New("spectralres: target index out of range")
	ErrTooShort         = errors.New("spectralres: series too short")
	ErrNotFitted        = errors.New("spectralres: detector not fitted")
	ErrChannelMismatch  = errors.New("spectralres: channel count mismatch")
)

// epsilon keeps score assembly finite when the trailing average is zero.
const epsilon = 1e-8

// Detector scores univariate time series with the Spectral Residual
// algorithm. The smoothing kernels are derived from the configuration at
// construction and never mutated afterwards.
type Detector struct {
	cfg Config

	qKernel     []float64 // uniform 1/q frequency-smoothing kernel
	localKernel []float64 // unnormalized ones kernel for the trailing average

	// target is the resolved channel index, written once by Fit (or by the
	// configuration) and read-only afterwards.
	target int
}

// New creates a Detector from the default config and the given options.
func New(opts ...Option) *Detector {
	return NewFromConfig(ApplyOptions(opts...))
}

// NewFromConfig creates a Detector from an explicit config. Non-positive
// sizes fall back to their defaults; a negative TargetIndex means unset.
func NewFromConfig(cfg Config) *Detector {
	cfg = normalizeConfig(cfg)

	qKernel := make([]float64, cfg.Q)
	for i := range qKernel {
		qKernel[i] = 1 / float64(cfg.Q)
	}

	localKernel := make([]float64, cfg.LocalWindowSize)
	for i := range localKernel {
		localKernel[i] = 1
	}

	target := -1
	if cfg.TargetIndex >= 0 {
		target = cfg.TargetIndex
	}

	return &Detector{
		cfg:         cfg,
		qKernel:     qKernel,
		localKernel: localKernel,
		target:      target,
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.LocalWindowSize <= 0 {
		cfg.LocalWindowSize = DefaultLocalWindowSize
	}
	if cfg.Q <= 0 {
		cfg.Q = DefaultQ
	}
	if cfg.EstimatedPoints < 0 {
		cfg.EstimatedPoints = DefaultEstimatedPoints
	}
	if cfg.PredictingPoints <= 0 {
		cfg.PredictingPoints = DefaultPredictingPoints
	}
	if cfg.TargetIndex < 0 {
		cfg.TargetIndex = -1
	}
	return cfg
}

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// TargetIndex returns the resolved target channel, or -1 before resolution.
func (d *Detector) TargetIndex() int { return d.target }

// Fit resolves the target channel from the training frame and returns the
// anomaly scores of the training data.
//
// A single-channel frame always resolves to its sole channel, regardless of
// any configured index. A multi-channel frame requires a configured index in
// range. Fit must complete before any concurrent Score calls begin.
func (d *Detector) Fit(frame timeseries.Frame) (timeseries.Series, error) {
	dim := frame.ChannelCount()
	switch {
	case dim == 1:
		d.target = 0
	case d.cfg.TargetIndex < 0:
		return timeseries.Series{}, fmt.Errorf(
			"%w: frame has %d channels, configure WithTargetIndex to select one",
			ErrMissingTarget, dim)
	case d.cfg.TargetIndex >= dim:
		return timeseries.Series{}, fmt.Errorf(
			"%w: index %d, frame has %d channels", ErrTargetOutOfRange, d.cfg.TargetIndex, dim)
	default:
		d.target = d.cfg.TargetIndex
	}

	return d.Score(frame, nil)
}

// Score computes one anomaly score per sample of frame. history, when
// non-nil, is prepended as context for the transform but contributes nothing
// to the output: the returned series has exactly frame.Len() entries aligned
// to frame's own timestamps, and its first score is always 0.
func (d *Detector) Score(frame timeseries.Frame, history *timeseries.Frame) (timeseries.Series, error) {
	target := d.target
	if target < 0 {
		if frame.ChannelCount() != 1 {
			return timeseries.Series{}, fmt.Errorf(
				"%w: call Fit to resolve the target of a %d-channel frame",
				ErrNotFitted, frame.ChannelCount())
		}
		target = 0
	}
	if target >= frame.ChannelCount() {
		return timeseries.Series{}, fmt.Errorf(
			"%w: index %d, frame has %d channels", ErrTargetOutOfRange, target, frame.ChannelCount())
	}

	values := frame.Channel(target)
	if history != nil {
		if history.ChannelCount() != frame.ChannelCount() {
			return timeseries.Series{}, fmt.Errorf(
				"%w: history has %d channels, frame has %d",
				ErrChannelMismatch, history.ChannelCount(), frame.ChannelCount())
		}
		prev := history.Channel(target)
		joined := make([]float64, 0, len(prev)+len(values))
		joined = append(joined, prev...)
		joined = append(joined, values...)
		values = joined
	}

	if len(values) < 2 {
		return timeseries.Series{}, fmt.Errorf(
			"%w: need at least 2 points including history, got %d", ErrTooShort, len(values))
	}

	scores, err := d.scoreValues(values)
	if err != nil {
		return timeseries.Series{}, err
	}

	// Only the non-history suffix is reported.
	scores = scores[len(scores)-frame.Len():]

	times := make([]time.Time, frame.Len())
	copy(times, frame.Times)

	return timeseries.Series{Times: times, Values: scores}, nil
}

// scoreValues runs the scoring pipeline on a raw value array and returns one
// score per input value.
func (d *Detector) scoreValues(values []float64) ([]float64, error) {
	input := values
	if d.cfg.EstimatedPoints > 0 {
		input = pad(values, d.cfg.PredictingPoints, d.cfg.EstimatedPoints)
	}

	saliency, err := d.saliencyMap(input)
	if err != nil {
		return nil, err
	}
	if d.cfg.EstimatedPoints > 0 {
		saliency = saliency[:len(saliency)-d.cfg.EstimatedPoints]
	}

	averages := d.trailingAverage(saliency)

	scores := make([]float64, len(saliency))
	scores[0] = 0
	for k := 1; k < len(saliency); k++ {
		avg := averages[k-1]
		scores[k] = (saliency[k] - avg) / (avg + epsilon)
	}
	return scores, nil
}

// trailingAverage convolves the saliency map with the unnormalized local
// kernel (full mode, first len(saliency) entries kept) and divides entry k
// (1-based) by min(k, LocalWindowSize), so early points average over their
// true available window. The final entry is dropped: score assembly pairs
// saliency[k] with the average over points strictly before k.
func (d *Detector) trailingAverage(saliency []float64) []float64 {
	n := len(saliency)
	window := len(d.localKernel)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for j := lo; j <= i; j++ {
			sum += saliency[j] * d.localKernel[i-j]
		}
		div := i + 1
		if div > window {
			div = window
		}
		out[i] = sum / float64(div)
	}
	return out[:n-1]
}

// gradient estimates the local slope at the end of values: the mean of the
// per-step slopes from each of the last m points before the final point to
// the final value, with m = min(predictingPoints, len(values)-1).
func gradient(values []float64, predictingPoints int) float64 {
	n := len(values)
	m := min(predictingPoints, n-1)
	last := values[n-1]

	sum := 0.0
	for j := 0; j < m; j++ {
		steps := float64(m - j)
		sum += (last - values[n-1-m+j]) / steps
	}
	return sum / float64(m)
}

// pad appends estimatedPoints copies of a single extrapolated value,
// values[n-m] + gradient*m, to the end of values.
func pad(values []float64, predictingPoints, estimatedPoints int) []float64 {
	n := len(values)
	m := min(predictingPoints, n-1)
	item := values[n-m] + gradient(values, predictingPoints)*float64(m)

	out := make([]float64, n+estimatedPoints)
	copy(out, values)
	for i := n; i < len(out); i++ {
		out[i] = item
	}
	return out
}
