// Package estimator estimates the average treatment effect of a binary
// treatment on a real-valued outcome.
//
// LRS is an S-learner over ordinary least squares: one regression of the
// outcome on [1, t, X], the ATE being the coefficient on t. OLS goes through
// an SVD pseudo-inverse so perfectly collinear covariates (a single user's
// constant gender and age) are tolerated. Intervals use the HC1 robust
// covariance with a normal quantile unless the classical covariance is
// selected.
package estimator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/okian/dietcause/pkg/metrics"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default configuration constants.
const (
	defaultAlpha        = 0.05
	defaultRandomSeed   = 42
	minSamples          = 2
	minBootstrapFits    = 2
	treatmentColumn     = 1
	nanosPerMillisecond = 1e6

	// epsilon is the float64 machine epsilon used for the rank tolerance.
	epsilon = 2.220446049250313e-16
)

// Covariance selects how coefficient standard errors are computed.
type Covariance string

// Supported covariance estimators.
const (
	// CovarianceHC1 is White's heteroskedasticity-robust covariance scaled
	// by n/(n-rank), paired with a normal quantile.
	CovarianceHC1 Covariance = "hc1"
	// CovarianceClassical is s²·(XᵀX)⁺, paired with a Student-t quantile.
	CovarianceClassical Covariance = "classical"
)

// ParseCovariance maps a config value to a Covariance.
func ParseCovariance(s string) (Covariance, error) {
	switch c := Covariance(strings.ToLower(strings.TrimSpace(s))); c {
	case CovarianceHC1, CovarianceClassical:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCovariance, s)
	}
}

// Estimate is an ATE with its interval.
type Estimate struct {
	Effect float64 `json:"effect"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	// Degenerate is set when the interval could not be computed and was
	// collapsed to the point estimate.
	Degenerate bool `json:"degenerate"`
	Samples    int  `json:"samples"`
}

// Model is a fitted outcome regression.
type Model struct {
	// Coefficients are ordered intercept, treatment, then features.
	Coefficients []float64
	// StdErrors is nil when the residual degrees of freedom are not positive.
	StdErrors []float64
	Rank      int
	DF        int
	Samples   int
}

// Effect returns the treatment coefficient.
func (m *Model) Effect() float64 {
	return m.Coefficients[treatmentColumn]
}

// Learner fits outcome models and estimates treatment effects.
type Learner interface {
	// Fit regresses y on t and X.
	Fit(ctx context.Context, x [][]float64, t, y []float64) (*Model, error)
	// EstimateATE fits on the given data and returns the effect with bounds.
	EstimateATE(ctx context.Context, x [][]float64, t, y []float64) (Estimate, error)
}

// LRS is the linear-regression S-learner.
type LRS struct {
	alpha         float64
	covariance    Covariance
	bootstraps    int
	bootstrapSize int
	seed          int64
}

// NewLRS creates a learner with configuration options.
func NewLRS(opts ...Option) *LRS {
	l := &LRS{
		alpha:      defaultAlpha,
		covariance: CovarianceHC1,
		seed:       defaultRandomSeed,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fit regresses y on [1, t, X].
func (l *LRS) Fit(ctx context.Context, x [][]float64, t, y []float64) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	if err := checkInputs(x, t, y); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.RecordEstimatorFitLatency(float64(time.Since(start).Nanoseconds()) / nanosPerMillisecond)
	}()

	return fitOLS(designMatrix(x, t), y, l.covariance)
}

// EstimateATE fits on the data and returns the treatment coefficient with
// a normal (HC1) or Student-t (classical) interval, or a percentile
// bootstrap interval when configured.
func (l *LRS) EstimateATE(ctx context.Context, x [][]float64, t, y []float64) (Estimate, error) {
	m, err := l.Fit(ctx, x, t, y)
	if err != nil {
		return Estimate{}, err
	}
	est := Estimate{Effect: m.Effect(), Samples: m.Samples}

	if l.bootstraps > 0 {
		return l.bootstrap(ctx, est, x, t, y)
	}

	if m.StdErrors == nil {
		est.Lower, est.Upper, est.Degenerate = est.Effect, est.Effect, true
		return est, nil
	}
	half := l.quantile(m.DF) * m.StdErrors[treatmentColumn]
	if math.IsNaN(half) || math.IsInf(half, 0) {
		est.Lower, est.Upper, est.Degenerate = est.Effect, est.Effect, true
		return est, nil
	}
	est.Lower, est.Upper = est.Effect-half, est.Effect+half
	return est, nil
}

func (l *LRS) quantile(df int) float64 {
	if l.covariance == CovarianceClassical {
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(1 - l.alpha/2)
	}
	return distuv.UnitNormal.Quantile(1 - l.alpha/2)
}

// bootstrap resamples rows with replacement and takes the alpha/2 and
// 1-alpha/2 quantiles of the refitted effects. Resamples without treatment
// variation are skipped.
func (l *LRS) bootstrap(ctx context.Context, est Estimate, x [][]float64, t, y []float64) (Estimate, error) {
	n := len(y)
	size := l.bootstrapSize
	if size <= 0 {
		size = n
	}
	rng := rand.New(rand.NewSource(l.seed)) //nolint:gosec // reproducible resampling

	bx := make([][]float64, size)
	bt := make([]float64, size)
	by := make([]float64, size)
	effects := make([]float64, 0, l.bootstraps)
	for b := 0; b < l.bootstraps; b++ {
		if err := ctx.Err(); err != nil {
			return Estimate{}, fmt.Errorf("context cancelled: %w", err)
		}
		for i := 0; i < size; i++ {
			j := rng.Intn(n)
			bx[i], bt[i], by[i] = x[j], t[j], y[j]
		}
		if hasNoVariation(bt) {
			continue
		}
		m, err := fitOLS(designMatrix(bx, bt), by, l.covariance)
		if err != nil {
			continue
		}
		effects = append(effects, m.Effect())
	}

	if len(effects) < minBootstrapFits {
		est.Lower, est.Upper, est.Degenerate = est.Effect, est.Effect, true
		return est, nil
	}
	slices.Sort(effects)
	est.Lower = stat.Quantile(l.alpha/2, stat.Empirical, effects, nil)
	est.Upper = stat.Quantile(1-l.alpha/2, stat.Empirical, effects, nil)
	return est, nil
}

func checkInputs(x [][]float64, t, y []float64) error {
	n := len(y)
	if len(t) != n || len(x) != n {
		return fmt.Errorf("%w: %d features rows, %d treatments, %d outcomes", ErrDimension, len(x), len(t), n)
	}
	if n < minSamples {
		return fmt.Errorf("%w: %d sample(s), need at least %d", ErrInsufficientData, n, minSamples)
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: feature row %d has %d columns, want %d", ErrDimension, i, len(row), width)
		}
		for _, v := range row {
			if !finite(v) {
				return fmt.Errorf("%w: non-finite feature in row %d", ErrEstimation, i)
			}
		}
		if !finite(t[i]) || !finite(y[i]) {
			return fmt.Errorf("%w: non-finite treatment or outcome in row %d", ErrEstimation, i)
		}
		if t[i] != 0 && t[i] != 1 {
			return fmt.Errorf("%w: treatment in row %d is %v, want 0 or 1", ErrEstimation, i, t[i])
		}
	}
	if hasNoVariation(t) {
		return fmt.Errorf("%w: all %d rows share T=%v", ErrDegenerateTreatment, n, t[0])
	}
	return nil
}

// designMatrix lays out [1, t, x...] row-major.
func designMatrix(x [][]float64, t []float64) *mat.Dense {
	n := len(t)
	p := len(x[0]) + 2
	data := make([]float64, 0, n*p)
	for i := range t {
		data = append(data, 1, t[i])
		data = append(data, x[i]...)
	}
	return mat.NewDense(n, p, data)
}

// fitOLS solves least squares through the SVD pseudo-inverse. Standard
// errors come from pinv·pinvᵀ·s² (classical) or pinv·diag(e²)·pinvᵀ·n/df
// (HC1).
func fitOLS(x *mat.Dense, yv []float64, covariance Covariance) (*Model, error) {
	n, p := x.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD did not converge", ErrEstimation)
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	tol := 0.0
	if len(values) > 0 {
		tol = values[0] * float64(max(n, p)) * epsilon
	}
	rank := 0
	inv := make([]float64, len(values))
	for i, s := range values {
		if s > tol {
			inv[i] = 1 / s
			rank++
		}
	}
	if rank == 0 {
		return nil, fmt.Errorf("%w: design matrix has rank 0", ErrEstimation)
	}

	// pinv = V · diag(1/s) · Uᵀ
	var vs mat.Dense
	vs.Apply(func(_, j int, val float64) float64 { return val * inv[j] }, &v)
	var pinv mat.Dense
	pinv.Mul(&vs, u.T())

	y := mat.NewVecDense(n, yv)
	var beta mat.VecDense
	beta.MulVec(&pinv, y)

	var fitted, resid mat.VecDense
	fitted.MulVec(x, &beta)
	resid.SubVec(y, &fitted)
	rss := mat.Dot(&resid, &resid)

	m := &Model{
		Coefficients: make([]float64, p),
		Rank:         rank,
		DF:           n - rank,
		Samples:      n,
	}
	for i := 0; i < p; i++ {
		m.Coefficients[i] = beta.AtVec(i)
		if !finite(m.Coefficients[i]) {
			return nil, fmt.Errorf("%w: non-finite coefficient", ErrEstimation)
		}
	}

	if m.DF <= 0 {
		return m, nil
	}
	var cov mat.Dense
	scale := rss / float64(m.DF)
	if covariance == CovarianceClassical {
		cov.Mul(&pinv, pinv.T())
	} else {
		var weighted mat.Dense
		weighted.Apply(func(_, j int, val float64) float64 {
			e := resid.AtVec(j)
			return val * e * e
		}, &pinv)
		cov.Mul(&weighted, pinv.T())
		scale = float64(n) / float64(m.DF)
	}
	m.StdErrors = make([]float64, p)
	for i := 0; i < p; i++ {
		m.StdErrors[i] = math.Sqrt(math.Max(scale*cov.At(i, i), 0))
	}
	return m, nil
}

func hasNoVariation(t []float64) bool {
	for _, v := range t[1:] {
		if v != t[0] {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
