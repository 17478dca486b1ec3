package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// TrendDegree is the degree of the fitted power/speed polynomial
	TrendDegree = 3
	// TrendSamples is the number of points the fitted curve is evaluated at
	TrendSamples = 100
	// MinTrendPoints is the smallest sample that gets a trend line; fewer points leave a gap
	MinTrendPoints = TrendDegree + 1

	// maxTrendCondition rejects fits whose Vandermonde matrix is numerically singular
	maxTrendCondition = 1e14
	// minRelativeSpread is the narrowest speed span, relative to the mean speed,
	// that still supports a cubic. Narrower data is effectively constant speed.
	minRelativeSpread = 1e-3
)

// UnavailableReason explains why a vessel has no trend line
type UnavailableReason string

const (
	// ReasonInsufficientPoints: 3 or fewer filtered points. A coverage gap, not a warning.
	ReasonInsufficientPoints UnavailableReason = "insufficient_points"
	// ReasonDegenerate: fewer distinct speeds than coefficients, e.g. constant speed
	ReasonDegenerate UnavailableReason = "degenerate_speeds"
	// ReasonUnstable: near-constant speed, or the least-squares solve failed or produced non-finite values
	ReasonUnstable UnavailableReason = "unstable_fit"
)

// Warns reports whether the reason should be surfaced to the user as a fit warning
func (r UnavailableReason) Warns() bool {
	return r == ReasonDegenerate || r == ReasonUnstable
}

// Curve is a fitted cubic and its sampled trace.
// Coefficients are lowest order first: power = c0 + c1*s + c2*s² + c3*s³. They are
// informational; evaluation uses Normalized, the same polynomial in t = (s - Center) / Scale,
// which stays well conditioned when the speed range is narrow.
type Curve struct {
	Coefficients [TrendDegree + 1]float64 `json:"coefficients" msgpack:"coefficients"`
	Normalized   [TrendDegree + 1]float64 `json:"normalized_coefficients" msgpack:"normalized_coefficients"`
	Center       float64                  `json:"center" msgpack:"center"`
	Scale        float64                  `json:"scale" msgpack:"scale"`
	X            []float64                `json:"x" msgpack:"x"`
	Y            []float64                `json:"y" msgpack:"y"`
}

// Eval evaluates the polynomial at s using Horner's scheme in the normalized variable
func (c *Curve) Eval(s float64) float64 {
	t := (s - c.Center) / c.Scale
	y := 0.0
	for i := len(c.Normalized) - 1; i >= 0; i-- {
		y = y*t + c.Normalized[i]
	}
	return y
}

// Trend is either a Curve or the reason there is none
type Trend struct {
	Curve  *Curve            `json:"curve,omitempty" msgpack:"curve,omitempty"`
	Reason UnavailableReason `json:"unavailable_reason,omitempty" msgpack:"unavailable_reason,omitempty"`
	Detail string            `json:"detail,omitempty" msgpack:"detail,omitempty"`
}

// Available reports whether a curve was produced
func (t Trend) Available() bool {
	return t.Curve != nil
}

func unavailableTrend(reason UnavailableReason, detail string) Trend {
	return Trend{Reason: reason, Detail: detail}
}

// FitTrend fits power ≈ c0 + c1·s + c2·s² + c3·s³ by ordinary least squares and
// samples it at TrendSamples evenly spaced speeds across [min(s), max(s)].
// speeds and powers must have equal length. It never panics on degenerate input.
func FitTrend(speeds, powers []float64) Trend {
	n := len(speeds)
	if n != len(powers) {
		return unavailableTrend(ReasonUnstable, fmt.Sprintf("%d speeds but %d power values", n, len(powers)))
	}
	if n < MinTrendPoints {
		return unavailableTrend(ReasonInsufficientPoints, fmt.Sprintf("%d points, need at least %d", n, MinTrendPoints))
	}
	if d := distinct(speeds); d < MinTrendPoints {
		return unavailableTrend(ReasonDegenerate, fmt.Sprintf("only %d distinct speed values", d))
	}

	lo, hi := floats.Min(speeds), floats.Max(speeds)
	if spread := (hi - lo) / math.Max(math.Abs(lo+hi)/2, 1); spread < minRelativeSpread {
		return unavailableTrend(ReasonUnstable, fmt.Sprintf("speeds span only %.3g knots", hi-lo))
	}

	c, err := leastSquaresCubic(speeds, powers)
	if err != nil {
		return unavailableTrend(ReasonUnstable, err.Error())
	}

	c.X = floats.Span(make([]float64, TrendSamples), lo, hi)
	c.Y = make([]float64, TrendSamples)
	for i, x := range c.X {
		c.Y[i] = c.Eval(x)
		if math.IsNaN(c.Y[i]) || math.IsInf(c.Y[i], 0) {
			return unavailableTrend(ReasonUnstable, "fit produced non-finite values")
		}
	}
	return Trend{Curve: c}
}

// leastSquaresCubic solves the Vandermonde system X·c = y by QR decomposition.
// Speeds are centred and scaled to [-1, 1] before building the matrix; the
// raw-speed coefficients are derived from the scaled ones for reporting only.
func leastSquaresCubic(xs, ys []float64) (*Curve, error) {
	n := len(xs)
	lo, hi := floats.Min(xs), floats.Max(xs)
	mid := (lo + hi) / 2
	half := (hi - lo) / 2
	if half == 0 || math.IsNaN(half) || math.IsInf(half, 0) {
		return nil, errors.New("speed range is zero or not finite")
	}

	X := mat.NewDense(n, TrendDegree+1, nil)
	for i := 0; i < n; i++ {
		t := (xs[i] - mid) / half
		v := 1.0
		for j := 0; j <= TrendDegree; j++ {
			X.Set(i, j, v)
			v *= t
		}
	}
	y := mat.NewVecDense(n, ys)

	var qr mat.QR
	qr.Factorize(X)

	scaled := mat.NewVecDense(TrendDegree+1, nil)
	if err := qr.SolveVecTo(scaled, false, y); err != nil {
		return nil, fmt.Errorf("error solving polynomial regression: %w", err)
	}
	if cond := qr.Cond(); cond > maxTrendCondition || math.IsNaN(cond) {
		return nil, fmt.Errorf("fit is ill-conditioned (condition number %.3g)", cond)
	}

	c := &Curve{Center: mid, Scale: half}
	for j := 0; j <= TrendDegree; j++ {
		c.Normalized[j] = scaled.AtVec(j)
		if math.IsNaN(c.Normalized[j]) || math.IsInf(c.Normalized[j], 0) {
			return nil, errors.New("fit produced non-finite coefficients")
		}
	}

	// Expand p(t) with t = (s - mid)/half into powers of s
	for j := 0; j <= TrendDegree; j++ {
		a := c.Normalized[j] / math.Pow(half, float64(j))
		// (s - mid)^j = Σ_k C(j,k) s^k (-mid)^(j-k)
		for k := 0; k <= j; k++ {
			c.Coefficients[k] += a * binomial(j, k) * math.Pow(-mid, float64(j-k))
		}
	}
	for _, v := range c.Coefficients {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("fit produced non-finite coefficients")
		}
	}
	return c, nil
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}

func distinct(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
