// Package spectralres implements the Spectral Residual anomaly detector for
// univariate time series, after Ren et al. (2019),
// https://arxiv.org/abs/1906.03821.
//
// The detector takes the frequency spectrum of the series, computes the log
// deviation of the amplitude spectrum from its locally smoothed version, and
// inverse-transforms the residual to obtain a saliency map. The anomaly score
// of a point is the relative deviation of its saliency from the trailing
// average of the preceding saliency values.
//
// Scoring is a pure function of the input once the target channel has been
// resolved. Fit resolves the target channel exactly once and is not safe for
// concurrent first use; after Fit, concurrent Score calls are safe.
package spectralres
