// Package timeseries provides the series containers shared by the detectors
// in this module.
//
// A [Series] is a single real-valued channel aligned to a strictly increasing
// time index. A [Frame] holds one or more channels over a shared index.
// Containers are plain value types; constructors validate shape and ordering
// once, and all downstream code assumes validated inputs.
package timeseries

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by the container constructors.
var (
	ErrEmpty              = errors.New("timeseries: empty input")
	ErrNonIncreasingTimes = errors.New("timeseries: times must be strictly increasing")
	ErrLengthMismatch     = errors.New("timeseries: length mismatch")
	ErrChannelIndex       = errors.New("timeseries: channel index out of range")
)

// Series is a univariate time series: values aligned to a strictly
// increasing time index.
type Series struct {
	Times  []time.Time
	Values []float64
}

// NewSeries validates and constructs a Series.
func NewSeries(times []time.Time, values []float64) (Series, error) {
	if len(times) == 0 {
		return Series{}, ErrEmpty
	}
	if len(times) != len(values) {
		return Series{}, fmt.Errorf("%w: %d times, %d values", ErrLengthMismatch, len(times), len(values))
	}
	if err := checkIncreasing(times); err != nil {
		return Series{}, err
	}
	return Series{Times: times, Values: values}, nil
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Times) }

// At returns the timestamp and value at index i.
func (s Series) At(i int) (time.Time, float64) { return s.Times[i], s.Values[i] }

// Frame is a multi-channel time series: equally long channels aligned to a
// shared strictly increasing time index. Names is optional; when present it
// must have one entry per channel.
type Frame struct {
	Times    []time.Time
	Channels [][]float64
	Names    []string
}

// NewFrame validates and constructs a Frame.
func NewFrame(times []time.Time, channels [][]float64, names []string) (Frame, error) {
	if len(times) == 0 || len(channels) == 0 {
		return Frame{}, ErrEmpty
	}
	for i, ch := range channels {
		if len(ch) != len(times) {
			return Frame{}, fmt.Errorf("%w: channel %d has %d values, index has %d",
				ErrLengthMismatch, i, len(ch), len(times))
		}
	}
	if names != nil && len(names) != len(channels) {
		return Frame{}, fmt.Errorf("%w: %d names, %d channels", ErrLengthMismatch, len(names), len(channels))
	}
	if err := checkIncreasing(times); err != nil {
		return Frame{}, err
	}
	return Frame{Times: times, Channels: channels, Names: names}, nil
}

// Len returns the number of samples per channel.
func (f Frame) Len() int { return len(f.Times) }

// ChannelCount returns the number of channels.
func (f Frame) ChannelCount() int { return len(f.Channels) }

// Channel returns the values of channel i. The slice is shared, not copied.
func (f Frame) Channel(i int) []float64 { return f.Channels[i] }

// Univariate extracts channel i as a Series sharing the frame's index.
func (f Frame) Univariate(i int) (Series, error) {
	if i < 0 || i >= len(f.Channels) {
		return Series{}, fmt.Errorf("%w: %d of %d", ErrChannelIndex, i, len(f.Channels))
	}
	return Series{Times: f.Times, Values: f.Channels[i]}, nil
}

func checkIncreasing(times []time.Time) error {
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return fmt.Errorf("%w: index %d", ErrNonIncreasingTimes, i)
		}
	}
	return nil
}
