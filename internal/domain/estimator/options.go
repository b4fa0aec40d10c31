package estimator

// Option applies a configuration option to the LRS learner.
type Option func(*LRS)

// WithAlpha sets the two-sided significance level of the interval.
func WithAlpha(alpha float64) Option {
	return func(l *LRS) {
		if alpha > 0 && alpha < 1 {
			l.alpha = alpha
		}
	}
}

// WithCovariance selects the standard error estimator. Unknown values keep
// the HC1 default.
func WithCovariance(c Covariance) Option {
	return func(l *LRS) {
		if parsed, err := ParseCovariance(string(c)); err == nil {
			l.covariance = parsed
		}
	}
}

// WithBootstrap switches the interval to a percentile bootstrap with n
// resamples of the given size. A size <= 0 resamples the full frame.
func WithBootstrap(n, size int) Option {
	return func(l *LRS) {
		if n > 0 {
			l.bootstraps = n
			l.bootstrapSize = size
		}
	}
}

// WithSeed sets the resampling seed.
func WithSeed(seed int64) Option {
	return func(l *LRS) {
		l.seed = seed
	}
}
