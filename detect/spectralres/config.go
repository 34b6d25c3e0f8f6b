package spectralres

// Default configuration values.
const (
	DefaultLocalWindowSize  = 21
	DefaultQ                = 3
	DefaultEstimatedPoints  = 5
	DefaultPredictingPoints = 5
)

// Config holds Spectral Residual detector parameters.
type Config struct {
	// LocalWindowSize is the number of previous saliency points used for the
	// trailing average that normalizes each anomaly score.
	LocalWindowSize int

	// Q is the width of the uniform kernel that smooths the log-amplitude
	// spectrum.
	Q int

	// EstimatedPoints is the number of synthetic padding points appended to
	// the series before the transform, so that genuinely recent points sit
	// inside the smoothing windows rather than at the edge. Zero disables
	// padding.
	EstimatedPoints int

	// PredictingPoints is the number of trailing points used to estimate the
	// gradient that extrapolates the padding value.
	PredictingPoints int

	// TargetIndex selects the channel of a multi-channel frame to score.
	// Negative means unset: single-channel frames resolve to their sole
	// channel, multi-channel frames require an explicit index at Fit time.
	TargetIndex int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the reference parameterization.
func DefaultConfig() Config {
	return Config{
		LocalWindowSize:  DefaultLocalWindowSize,
		Q:                DefaultQ,
		EstimatedPoints:  DefaultEstimatedPoints,
		PredictingPoints: DefaultPredictingPoints,
		TargetIndex:      -1,
	}
}

// WithLocalWindowSize sets the trailing-average window size.
func WithLocalWindowSize(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.LocalWindowSize = n
		}
	}
}

// WithQ sets the frequency-smoothing kernel width.
func WithQ(q int) Option {
	return func(cfg *Config) {
		if q > 0 {
			cfg.Q = q
		}
	}
}

// WithEstimatedPoints sets the number of padding points. Zero disables padding.
func WithEstimatedPoints(n int) Option {
	return func(cfg *Config) {
		if n >= 0 {
			cfg.EstimatedPoints = n
		}
	}
}

// WithPredictingPoints sets the gradient estimation window.
func WithPredictingPoints(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.PredictingPoints = n
		}
	}
}

// WithTargetIndex sets the channel to score in multi-channel frames.
func WithTargetIndex(i int) Option {
	return func(cfg *Config) {
		if i >= 0 {
			cfg.TargetIndex = i
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
