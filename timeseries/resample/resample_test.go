package resample

import (
	"testing"
	"time"

	"github.com/cwbudde/algo-anomaly/internal/testutil"
	"github.com/cwbudde/algo-anomaly/timeseries"
)

func at(seconds ...int) []time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, len(seconds))
	for i, s := range seconds {
		out[i] = start.Add(time.Duration(s) * time.Second)
	}
	return out
}

func TestUniformInferredGranularity(t *testing.T) {
	// Gaps 1s, 1s, 2s: the median gap is 1s, and the missing sample at t=3s
	// is filled by linear interpolation.
	frame, err := timeseries.NewFrame(at(0, 1, 2, 4), [][]float64{{0, 1, 2, 4}}, nil)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	got, err := Uniform(frame, 0)
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	if got.Len() != 5 {
		t.Fatalf("Len: got %d, want 5", got.Len())
	}
	testutil.RequireSliceNearlyEqual(t, got.Channel(0), []float64{0, 1, 2, 3, 4}, 1e-9)
	for i, ts := range got.Times {
		if !ts.Equal(at(0, 1, 2, 3, 4)[i]) {
			t.Fatalf("time %d: got %v", i, ts)
		}
	}
}

func TestUniformExplicitGranularity(t *testing.T) {
	frame, err := timeseries.NewFrame(at(0, 1, 2, 4), [][]float64{
		{0, 1, 2, 4},
		{8, 6, 4, 0},
	}, []string{"up", "down"})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	got, err := Uniform(frame, 2*time.Second)
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	if got.Len() != 3 || got.ChannelCount() != 2 {
		t.Fatalf("shape: got %dx%d, want 3x2", got.Len(), got.ChannelCount())
	}
	testutil.RequireSliceNearlyEqual(t, got.Channel(0), []float64{0, 2, 4}, 1e-9)
	testutil.RequireSliceNearlyEqual(t, got.Channel(1), []float64{8, 4, 0}, 1e-9)
	if got.Names[1] != "down" {
		t.Errorf("names not carried through: %v", got.Names)
	}
}

func TestUniformAlreadyUniform(t *testing.T) {
	frame, err := timeseries.NewFrame(at(0, 1, 2, 3), [][]float64{{5, 6, 7, 8}}, nil)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	got, err := Uniform(frame, 0)
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	if got.Len() != 4 {
		t.Fatalf("Len: got %d, want 4", got.Len())
	}
	testutil.RequireSliceNearlyEqual(t, got.Channel(0), frame.Channel(0), 1e-12)
}

func TestUniformDegenerate(t *testing.T) {
	frame, err := timeseries.NewFrame(at(0), [][]float64{{42}}, nil)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	got, err := Uniform(frame, 0)
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	if got.Len() != 1 || got.Channel(0)[0] != 42 {
		t.Errorf("degenerate frame changed: %+v", got)
	}
}
